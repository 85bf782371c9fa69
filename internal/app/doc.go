// Package app contains the core application logic. It turns a loaded project
// model into runtime objects (resource registry, storage catalog, pipeline)
// and drives the plan, validate and run lifecycles, decoupled from any
// specific entrypoint like a CLI or server.
package app
