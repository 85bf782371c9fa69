package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/fusegrid/internal/node"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered node functions for a single application
// instance.
type Registry struct {
	funcs map[string]node.Func
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{funcs: make(map[string]node.Func)}
}

// RegisterFunc registers a Go function under name. Registering the same name
// twice is a programmer error and panics.
func (r *Registry) RegisterFunc(name string, fn node.Func) {
	if _, exists := r.funcs[name]; exists {
		panic(fmt.Sprintf("node function with name '%s' already registered", name))
	}
	if fn == nil {
		panic(fmt.Sprintf("node function '%s' is nil", name))
	}
	slog.Debug("Registering node function.", "name", name)
	r.funcs[name] = fn
}

// Func looks up a registered function.
func (r *Registry) Func(name string) (node.Func, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("node function '%s' is not registered (available: %v)", name, r.Names())
	}
	return fn, nil
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int { return len(r.funcs) }
