package projector

import (
	"slices"

	"github.com/vk/fusegrid/internal/pipeline"
	"github.com/vk/fusegrid/internal/resource"
)

// Task is the orchestrator-facing view of one top-level entity.
type Task struct {
	// DisplayName is the sanitized name the orchestrator sees.
	DisplayName string
	// Name is the underlying entity name, used to select it at run time.
	Name string
	Kind pipeline.Kind
	// Nodes lists the executable nodes behind the task in execution order.
	Nodes []string
	// Deps holds parent display names, sorted.
	Deps     []string
	Resource resource.Class
}

// Record is the flat form of a Task handed to renderers.
type Record struct {
	Name   string   `json:"name" yaml:"name"`
	Nodes  string   `json:"nodes" yaml:"nodes"`
	Deps   []string `json:"deps" yaml:"deps"`
	Mem    int      `json:"mem" yaml:"mem"`
	CPU    int      `json:"cpu" yaml:"cpu"`
	NumGPU int      `json:"num_gpu" yaml:"num_gpu"`
}

// Record converts the task. Deps is never nil so that it encodes as [].
func (t *Task) Record() Record {
	deps := slices.Clone(t.Deps)
	if deps == nil {
		deps = []string{}
	}
	return Record{
		Name:   t.DisplayName,
		Nodes:  t.Name,
		Deps:   deps,
		Mem:    t.Resource.Mem,
		CPU:    t.Resource.CPU,
		NumGPU: t.Resource.NumGPU,
	}
}

// TaskGraph is the ordered result of a projection, keyed by entity name.
// Iteration order is the emission order, which is a valid topological order.
type TaskGraph struct {
	order []string
	tasks map[string]*Task
}

func newTaskGraph(capacity int) *TaskGraph {
	return &TaskGraph{
		order: make([]string, 0, capacity),
		tasks: make(map[string]*Task, capacity),
	}
}

func (g *TaskGraph) add(t *Task) {
	g.order = append(g.order, t.Name)
	g.tasks[t.Name] = t
}

// Len returns the number of tasks.
func (g *TaskGraph) Len() int { return len(g.order) }

// Names returns entity names in emission order.
func (g *TaskGraph) Names() []string { return slices.Clone(g.order) }

// Task returns the task for an entity name.
func (g *TaskGraph) Task(name string) (*Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// Tasks returns the tasks in emission order.
func (g *TaskGraph) Tasks() []*Task {
	out := make([]*Task, len(g.order))
	for i, name := range g.order {
		out[i] = g.tasks[name]
	}
	return out
}

// Records returns the flat records in emission order.
func (g *TaskGraph) Records() []Record {
	out := make([]Record, len(g.order))
	for i, name := range g.order {
		out[i] = g.tasks[name].Record()
	}
	return out
}

// HasGPU reports whether any task requests a GPU.
func (g *TaskGraph) HasGPU() bool {
	for _, t := range g.tasks {
		if t.Resource.NumGPU > 0 {
			return true
		}
	}
	return false
}
