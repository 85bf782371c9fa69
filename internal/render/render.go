// Package render turns projected task records into documents an external
// orchestrator consumes: a plain YAML list of records, or a complete
// Argo-style Workflow whose DAG mirrors the task graph.
package render

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vk/fusegrid/internal/projector"
)

// Template names referenced by DAG tasks.
const (
	TemplateCPU      = "kedro"
	TemplateGPU      = "kedro-gpu"
	TemplatePipeline = "pipeline"
)

// Options parameterize a workflow document.
type Options struct {
	Namespace string
	Image     string
	// Pipeline is the pipeline name each container passes back to `run`.
	Pipeline string
	// Command is the container entrypoint. Empty means "fusegrid".
	Command string
	// ConfigPath is passed to `run --config` when non-empty.
	ConfigPath string
}

// Workflow is the rendered document.
type Workflow struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

type Metadata struct {
	GenerateName string            `yaml:"generateName"`
	Namespace    string            `yaml:"namespace,omitempty"`
	Labels       map[string]string `yaml:"labels,omitempty"`
}

type Spec struct {
	Entrypoint string     `yaml:"entrypoint"`
	Templates  []Template `yaml:"templates"`
}

// Template is either a container template or the DAG template.
type Template struct {
	Name      string     `yaml:"name"`
	Inputs    *Inputs    `yaml:"inputs,omitempty"`
	Container *Container `yaml:"container,omitempty"`
	DAG       *DAG       `yaml:"dag,omitempty"`
}

type Inputs struct {
	Parameters []Parameter `yaml:"parameters"`
}

type Parameter struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
}

type Container struct {
	Image     string    `yaml:"image"`
	Command   []string  `yaml:"command"`
	Args      []string  `yaml:"args"`
	Resources Resources `yaml:"resources"`
}

type Resources struct {
	Requests map[string]string `yaml:"requests"`
	Limits   map[string]string `yaml:"limits,omitempty"`
}

type DAG struct {
	Tasks []DAGTask `yaml:"tasks"`
}

type DAGTask struct {
	Name         string    `yaml:"name"`
	Template     string    `yaml:"template"`
	Dependencies []string  `yaml:"dependencies,omitempty"`
	Arguments    Arguments `yaml:"arguments"`
}

type Arguments struct {
	Parameters []Parameter `yaml:"parameters"`
}

// TemplateFor picks the container template for a record.
func TemplateFor(r projector.Record) string {
	if r.NumGPU > 0 {
		return TemplateGPU
	}
	return TemplateCPU
}

// NewWorkflow builds the workflow document for records in emission order.
func NewWorkflow(records []projector.Record, opts Options) (*Workflow, error) {
	if opts.Image == "" {
		return nil, fmt.Errorf("workflow image is required")
	}
	if opts.Pipeline == "" {
		return nil, fmt.Errorf("workflow pipeline name is required")
	}
	command := opts.Command
	if command == "" {
		command = "fusegrid"
	}

	tasks := make([]DAGTask, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, DAGTask{
			Name:         r.Name,
			Template:     TemplateFor(r),
			Dependencies: r.Deps,
			Arguments: Arguments{Parameters: []Parameter{
				{Name: "nodes", Value: r.Nodes},
				{Name: "mem", Value: strconv.Itoa(r.Mem)},
				{Name: "cpu", Value: strconv.Itoa(r.CPU)},
				{Name: "num_gpu", Value: strconv.Itoa(r.NumGPU)},
			}},
		})
	}

	name := projector.DisplayName(opts.Pipeline)
	if name == "" {
		name = "pipeline"
	}
	return &Workflow{
		APIVersion: "argoproj.io/v1alpha1",
		Kind:       "Workflow",
		Metadata: Metadata{
			GenerateName: name + "-",
			Namespace:    opts.Namespace,
			Labels:       map[string]string{"fusegrid/pipeline": name},
		},
		Spec: Spec{
			Entrypoint: TemplatePipeline,
			Templates: []Template{
				containerTemplate(TemplateCPU, command, opts, false),
				containerTemplate(TemplateGPU, command, opts, true),
				{Name: TemplatePipeline, DAG: &DAG{Tasks: tasks}},
			},
		},
	}, nil
}

func containerTemplate(name, command string, opts Options, gpu bool) Template {
	args := []string{"run", "--pipeline", opts.Pipeline, "--nodes", "{{inputs.parameters.nodes}}"}
	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}
	res := Resources{Requests: map[string]string{
		"memory": "{{inputs.parameters.mem}}Gi",
		"cpu":    "{{inputs.parameters.cpu}}",
	}}
	if gpu {
		res.Limits = map[string]string{"nvidia.com/gpu": "{{inputs.parameters.num_gpu}}"}
	}
	return Template{
		Name: name,
		Inputs: &Inputs{Parameters: []Parameter{
			{Name: "nodes"}, {Name: "mem"}, {Name: "cpu"}, {Name: "num_gpu"},
		}},
		Container: &Container{
			Image:     opts.Image,
			Command:   []string{command},
			Args:      args,
			Resources: res,
		},
	}
}

// WriteWorkflow renders records as a workflow document to w.
func WriteWorkflow(w io.Writer, records []projector.Record, opts Options) error {
	wf, err := NewWorkflow(records, opts)
	if err != nil {
		return err
	}
	return encode(w, wf)
}

// WriteRecords writes records as a YAML sequence.
func WriteRecords(w io.Writer, records []projector.Record) error {
	if records == nil {
		records = []projector.Record{}
	}
	return encode(w, records)
}

func encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
