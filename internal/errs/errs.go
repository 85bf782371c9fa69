// Package errs defines the error taxonomy shared by the fusion, projection and
// execution packages. Callers match them with errors.As.
package errs

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid construction: an empty group, a
// malformed resource registry, duplicate names, or missing free inputs. It is
// raised before anything executes.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Configf builds a ConfigurationError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// CyclicGraphError is returned by the leveler when vertices remain but none
// of them can be unblocked.
type CyclicGraphError struct {
	Remaining []string
	// Cycle is one concrete cycle path when it could be extracted.
	Cycle []string
}

func (e *CyclicGraphError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("cycle detected: %s", strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("cycle detected: no progress possible for %s", strings.Join(e.Remaining, ", "))
}

// ResourceClassNotFoundError identifies the vertex whose explicit or default
// resource class is absent from the registry.
type ResourceClassNotFoundError struct {
	Vertex string
	Class  string
}

func (e *ResourceClassNotFoundError) Error() string {
	return fmt.Sprintf("resource class %q referenced by %q not found in registry", e.Class, e.Vertex)
}

// NameCollisionError is returned when distinct source names sanitize to the
// same orchestrator display name.
type NameCollisionError struct {
	DisplayName string
	Names       []string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("display name %q is shared by %s", e.DisplayName, strings.Join(e.Names, ", "))
}

// NodeExecutionError wraps the failure of a single node during a run.
type NodeExecutionError struct {
	Node string
	Err  error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}
