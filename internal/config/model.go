package config

import (
	"fmt"
	"sort"
)

// DefaultPipeline is the name of the pipeline run when none is requested.
const DefaultPipeline = "__default__"

// Model is the unified, format-agnostic representation of a project.
type Model struct {
	Project         Project
	ResourceClasses map[string]ResourceClass
	Runner          Runner
	// Params holds plain Go values (string, float64, bool, []any,
	// map[string]any) keyed by parameter name, without the params: prefix.
	Params    map[string]any
	Datasets  map[string]*Dataset
	Pipelines map[string]*Pipeline
	// SocketIO is nil unless a dashboard endpoint is configured.
	SocketIO *SocketIO
}

// NewModel returns an empty model with its maps allocated and the runner
// defaults applied.
func NewModel() *Model {
	return &Model{
		ResourceClasses: make(map[string]ResourceClass),
		Runner:          Runner{UseMemoryDatasets: true},
		Params:          make(map[string]any),
		Datasets:        make(map[string]*Dataset),
		Pipelines:       make(map[string]*Pipeline),
	}
}

// Project carries project-wide settings.
type Project struct {
	Name                 string
	Namespace            string
	DefaultResourceClass string
	// Image is the container image rendered into workflow documents.
	Image string
}

// ResourceClass is one `resource_class` entry.
type ResourceClass struct {
	Mem    int
	CPU    int
	NumGPU int
}

// Runner holds execution settings.
type Runner struct {
	UseMemoryDatasets bool
	AsyncIO           bool
}

// Dataset binds one artifact key to a storage backend.
type Dataset struct {
	Key string
	// Backend is one of "memory", "file", "object" or "postgres".
	Backend string
	Path    string
	URL     string
	DSN     string
	Table   string
}

// Pipeline is a named, ordered list of entities.
type Pipeline struct {
	Name     string
	Entities []*Entity
}

// EntityKind distinguishes plain nodes from groups.
type EntityKind string

const (
	EntityNode  EntityKind = "node"
	EntityGroup EntityKind = "group"
)

// Entity is a node or a group. Func, Inputs and Tags apply to nodes;
// Members applies to groups; Outputs and ResourceClass apply to both.
type Entity struct {
	Kind          EntityKind
	Name          string
	Func          string
	Inputs        []string
	Outputs       []string
	Tags          []string
	ResourceClass string
	Members       []*Entity
}

// SocketIO describes a run-progress dashboard endpoint.
type SocketIO struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Pipeline looks up a pipeline by name.
func (m *Model) Pipeline(name string) (*Pipeline, error) {
	if name == "" {
		name = DefaultPipeline
	}
	p, ok := m.Pipelines[name]
	if !ok {
		return nil, fmt.Errorf("pipeline %q not found, available: %v", name, m.PipelineNames())
	}
	return p, nil
}

// PipelineNames returns the configured pipeline names, sorted.
func (m *Model) PipelineNames() []string {
	out := make([]string, 0, len(m.Pipelines))
	for name := range m.Pipelines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
