package hclconfig

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. It has no remain field, so unknown blocks are rejected.
type fileRoot struct {
	Project         *projectBlock         `hcl:"project,block"`
	ResourceClasses []*resourceClassBlock `hcl:"resource_class,block"`
	Runner          *runnerBlock          `hcl:"runner,block"`
	Params          []*paramsBlock        `hcl:"params,block"`
	Datasets        []*datasetBlock       `hcl:"dataset,block"`
	Pipelines       []*pipelineBlock      `hcl:"pipeline,block"`
	SocketIO        *socketIOBlock        `hcl:"socketio_hook,block"`
}

type projectBlock struct {
	Name                 string `hcl:"name,optional"`
	Namespace            string `hcl:"namespace,optional"`
	DefaultResourceClass string `hcl:"default_resource_class,optional"`
	Image                string `hcl:"image,optional"`
}

type resourceClassBlock struct {
	Name   string `hcl:"name,label"`
	Mem    int    `hcl:"mem"`
	CPU    int    `hcl:"cpu"`
	NumGPU int    `hcl:"num_gpu,optional"`
}

type runnerBlock struct {
	UseMemoryDatasets *bool `hcl:"use_memory_datasets,optional"`
	AsyncIO           bool  `hcl:"async_io,optional"`
}

// paramsBlock holds arbitrary attributes; they are evaluated one by one.
type paramsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type datasetBlock struct {
	Name    string `hcl:"name,label"`
	Backend string `hcl:"backend"`
	Path    string `hcl:"path,optional"`
	URL     string `hcl:"url,optional"`
	DSN     string `hcl:"dsn,optional"`
	Table   string `hcl:"table,optional"`
}

// pipelineBlock keeps its body raw so that node and group blocks can be
// read in source order.
type pipelineBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type nodeBlock struct {
	Name          string   `hcl:"name,label"`
	Func          string   `hcl:"func"`
	Inputs        []string `hcl:"inputs,optional"`
	Outputs       []string `hcl:"outputs,optional"`
	Tags          []string `hcl:"tags,optional"`
	ResourceClass string   `hcl:"resource_class,optional"`
}

type groupBlock struct {
	Name          string       `hcl:"name,label"`
	ResourceClass string       `hcl:"resource_class,optional"`
	Outputs       []string     `hcl:"outputs,optional"`
	Nodes         []*nodeBlock `hcl:"node,block"`
}

type socketIOBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// pipelineBodySchema lists the blocks allowed inside a pipeline.
var pipelineBodySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "node", LabelNames: []string{"name"}},
		{Type: "group", LabelNames: []string{"name"}},
	},
}
