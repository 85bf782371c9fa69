// Package resource holds the named compute profiles tasks are bound to.
package resource

import (
	"sort"

	"github.com/vk/fusegrid/internal/errs"
)

// Class is a named bundle of compute attributes. Mem is in GiB.
type Class struct {
	Mem    int `json:"mem" yaml:"mem"`
	CPU    int `json:"cpu" yaml:"cpu"`
	NumGPU int `json:"num_gpu" yaml:"num_gpu"`
}

// Registry maps class names to their attributes. It is read-only once built.
type Registry struct {
	classes map[string]Class
	// defaultName is used for vertices without an explicit binding.
	defaultName string
}

// NewRegistry validates the shape of classes and builds a registry. A default
// name that is not in classes is accepted here; it fails only when a vertex
// actually falls back to it.
func NewRegistry(classes map[string]Class, defaultName string) (*Registry, error) {
	if len(classes) == 0 {
		return nil, errs.Configf("resource registry has no classes")
	}
	if defaultName == "" {
		return nil, errs.Configf("resource registry needs a default class name")
	}
	r := &Registry{classes: make(map[string]Class, len(classes)), defaultName: defaultName}
	for name, c := range classes {
		if name == "" {
			return nil, errs.Configf("resource class with an empty name")
		}
		if c.Mem <= 0 || c.CPU <= 0 {
			return nil, errs.Configf("resource class %q needs positive mem and cpu, got mem=%d cpu=%d", name, c.Mem, c.CPU)
		}
		if c.NumGPU < 0 {
			return nil, errs.Configf("resource class %q has negative num_gpu %d", name, c.NumGPU)
		}
		r.classes[name] = c
	}
	return r, nil
}

// Default returns the default class name.
func (r *Registry) Default() string { return r.defaultName }

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Resolve returns the class for a vertex: its explicit class if set,
// otherwise fallback, otherwise the registry default. A missing class is a
// *errs.ResourceClassNotFoundError naming the vertex.
func (r *Registry) Resolve(vertex, explicit, fallback string) (Class, error) {
	name := explicit
	if name == "" {
		name = fallback
	}
	if name == "" {
		name = r.defaultName
	}
	c, ok := r.classes[name]
	if !ok {
		return Class{}, &errs.ResourceClassNotFoundError{Vertex: vertex, Class: name}
	}
	return c, nil
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.classes))
	for name := range r.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
