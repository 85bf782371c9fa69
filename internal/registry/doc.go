// Package registry provides the central "glue" for the module system.
//
// The Registry stores mappings between the function names used in pipeline
// definitions (e.g., func = "identity") and the compiled Go functions that
// implement them. Modules register their functions at startup; the app then
// resolves every node of a loaded pipeline against the registry, so a
// misspelled or missing function fails before anything runs.
package registry
