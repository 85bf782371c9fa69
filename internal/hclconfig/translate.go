package hclconfig

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/fusegrid/internal/config"
)

// singletons tracks blocks that may appear once per project.
type singletons struct {
	project, runner, socketIO bool
}

func translateFile(model *config.Model, seen *singletons, root *fileRoot, evalCtx *hcl.EvalContext) error {
	if root.Project != nil {
		if seen.project {
			return fmt.Errorf("project block declared more than once")
		}
		seen.project = true
		model.Project = config.Project{
			Name:                 root.Project.Name,
			Namespace:            root.Project.Namespace,
			DefaultResourceClass: root.Project.DefaultResourceClass,
			Image:                root.Project.Image,
		}
	}

	for _, rc := range root.ResourceClasses {
		if _, dup := model.ResourceClasses[rc.Name]; dup {
			return fmt.Errorf("resource_class %q declared more than once", rc.Name)
		}
		model.ResourceClasses[rc.Name] = config.ResourceClass{Mem: rc.Mem, CPU: rc.CPU, NumGPU: rc.NumGPU}
	}

	if root.Runner != nil {
		if seen.runner {
			return fmt.Errorf("runner block declared more than once")
		}
		seen.runner = true
		if root.Runner.UseMemoryDatasets != nil {
			model.Runner.UseMemoryDatasets = *root.Runner.UseMemoryDatasets
		}
		model.Runner.AsyncIO = root.Runner.AsyncIO
	}

	for _, pb := range root.Params {
		params, err := decodeParams(pb.Body, evalCtx)
		if err != nil {
			return err
		}
		for name, v := range params {
			if _, dup := model.Params[name]; dup {
				return fmt.Errorf("parameter %q declared more than once", name)
			}
			model.Params[name] = v
		}
	}

	for _, ds := range root.Datasets {
		if _, dup := model.Datasets[ds.Name]; dup {
			return fmt.Errorf("dataset %q declared more than once", ds.Name)
		}
		d, err := translateDataset(ds)
		if err != nil {
			return err
		}
		model.Datasets[ds.Name] = d
	}

	for _, pb := range root.Pipelines {
		if _, dup := model.Pipelines[pb.Name]; dup {
			return fmt.Errorf("pipeline %q declared more than once", pb.Name)
		}
		p, err := translatePipeline(pb, evalCtx)
		if err != nil {
			return err
		}
		model.Pipelines[pb.Name] = p
	}

	if root.SocketIO != nil {
		if seen.socketIO {
			return fmt.Errorf("socketio_hook block declared more than once")
		}
		seen.socketIO = true
		model.SocketIO = &config.SocketIO{
			URL:                root.SocketIO.URL,
			Namespace:          root.SocketIO.Namespace,
			InsecureSkipVerify: root.SocketIO.InsecureSkipVerify,
		}
	}
	return nil
}

func translateDataset(ds *datasetBlock) (*config.Dataset, error) {
	d := &config.Dataset{
		Key:     ds.Name,
		Backend: ds.Backend,
		Path:    ds.Path,
		URL:     ds.URL,
		DSN:     ds.DSN,
		Table:   ds.Table,
	}
	switch ds.Backend {
	case "memory":
	case "file":
		if ds.Path == "" {
			return nil, fmt.Errorf("dataset %q: file backend requires path", ds.Name)
		}
	case "object":
		if ds.URL == "" {
			return nil, fmt.Errorf("dataset %q: object backend requires url", ds.Name)
		}
	case "postgres":
		if ds.DSN == "" {
			return nil, fmt.Errorf("dataset %q: postgres backend requires dsn", ds.Name)
		}
		if d.Table == "" {
			d.Table = "fusegrid_artifacts"
		}
	default:
		return nil, fmt.Errorf("dataset %q: unknown backend %q (want memory, file, object or postgres)", ds.Name, ds.Backend)
	}
	return d, nil
}

func translatePipeline(pb *pipelineBlock, evalCtx *hcl.EvalContext) (*config.Pipeline, error) {
	content, diags := pb.Body.Content(pipelineBodySchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("pipeline %q: %w", pb.Name, diags)
	}

	p := &config.Pipeline{Name: pb.Name}
	for _, block := range content.Blocks {
		name := block.Labels[0]
		switch block.Type {
		case "node":
			var nb nodeBlock
			if diags := gohcl.DecodeBody(block.Body, evalCtx, &nb); diags.HasErrors() {
				return nil, fmt.Errorf("pipeline %q, node %q: %w", pb.Name, name, diags)
			}
			nb.Name = name
			p.Entities = append(p.Entities, translateNode(&nb))
		case "group":
			var gb groupBlock
			if diags := gohcl.DecodeBody(block.Body, evalCtx, &gb); diags.HasErrors() {
				return nil, fmt.Errorf("pipeline %q, group %q: %w", pb.Name, name, diags)
			}
			gb.Name = name
			g := &config.Entity{
				Kind:          config.EntityGroup,
				Name:          gb.Name,
				Outputs:       gb.Outputs,
				ResourceClass: gb.ResourceClass,
			}
			for _, nb := range gb.Nodes {
				g.Members = append(g.Members, translateNode(nb))
			}
			p.Entities = append(p.Entities, g)
		}
	}
	return p, nil
}

func translateNode(nb *nodeBlock) *config.Entity {
	return &config.Entity{
		Kind:          config.EntityNode,
		Name:          nb.Name,
		Func:          nb.Func,
		Inputs:        nb.Inputs,
		Outputs:       nb.Outputs,
		Tags:          nb.Tags,
		ResourceClass: nb.ResourceClass,
	}
}
