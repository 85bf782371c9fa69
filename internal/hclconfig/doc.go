// Package hclconfig loads fusegrid projects written in HCL into the
// format-agnostic config.Model.
//
// A project is any number of .hcl files; blocks from all files are merged.
// Pipeline bodies are read in source order because the order of entities is
// the tie-breaker for execution and projection.
package hclconfig
