// Package config defines the format-agnostic configuration model for a
// fusegrid project, along with the Loader interface that format-specific
// packages implement.
//
// The `config.Model` is the single source of truth for the `app` package: it
// is turned into a resource registry, a catalog and pipelines there. The HCL
// implementation lives in the `hclconfig` package.
package config
