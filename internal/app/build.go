package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/vk/fusegrid/internal/catalog"
	"github.com/vk/fusegrid/internal/config"
	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/vk/fusegrid/internal/fusion"
	"github.com/vk/fusegrid/internal/node"
	"github.com/vk/fusegrid/internal/pipeline"
	"github.com/vk/fusegrid/internal/resource"
)

// buildResources converts the model's resource classes into a registry.
func (a *App) buildResources() (*resource.Registry, error) {
	classes := make(map[string]resource.Class, len(a.model.ResourceClasses))
	for name, rc := range a.model.ResourceClasses {
		classes[name] = resource.Class{Mem: rc.Mem, CPU: rc.CPU, NumGPU: rc.NumGPU}
	}
	def := a.model.Project.DefaultResourceClass
	if a.cfg.DefaultResourceClass != "" {
		def = a.cfg.DefaultResourceClass
	}
	return resource.NewRegistry(classes, def)
}

// buildPipeline resolves the configured pipeline against the function
// registry. It returns the full pipeline and the selection the filter keeps.
func (a *App) buildPipeline(ctx context.Context) (full, selected *pipeline.Pipeline, err error) {
	logger := ctxlog.FromContext(ctx)

	def, err := a.model.Pipeline(a.cfg.Pipeline)
	if err != nil {
		return nil, nil, err
	}

	entities := make([]pipeline.Entity, 0, len(def.Entities))
	for _, e := range def.Entities {
		switch e.Kind {
		case config.EntityNode:
			n, err := a.buildNode(e)
			if err != nil {
				return nil, nil, err
			}
			entities = append(entities, pipeline.NodeEntity(n))
		case config.EntityGroup:
			members := make([]*node.Node, 0, len(e.Members))
			for _, m := range e.Members {
				n, err := a.buildNode(m)
				if err != nil {
					return nil, nil, fmt.Errorf("group %q: %w", e.Name, err)
				}
				members = append(members, n)
			}
			opts := []fusion.Option{fusion.WithResourceClass(e.ResourceClass)}
			if len(e.Outputs) > 0 {
				opts = append(opts, fusion.WithOutputs(e.Outputs...))
			}
			g, err := fusion.New(e.Name, members, opts...)
			if err != nil {
				return nil, nil, err
			}
			entities = append(entities, pipeline.GroupEntity(g))
		default:
			return nil, nil, fmt.Errorf("entity %q has unknown kind %q", e.Name, e.Kind)
		}
	}

	full, err = pipeline.New(entities...)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline %q: %w", def.Name, err)
	}
	selected, err = full.Filter(a.cfg.Filter)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline %q: %w", def.Name, err)
	}
	logger.Debug("Pipeline built.", "pipeline", def.Name, "entities", full.Len(), "selected", selected.Len())
	return full, selected, nil
}

func (a *App) buildNode(e *config.Entity) (*node.Node, error) {
	if e.Kind != config.EntityNode {
		return nil, fmt.Errorf("entity %q must be a node", e.Name)
	}
	fn, err := a.registry.Func(e.Func)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", e.Name, err)
	}
	return node.New(e.Name, fn, e.Inputs, e.Outputs,
		node.WithTags(e.Tags...),
		node.WithResourceClass(e.ResourceClass),
	)
}

// buildCatalog binds every configured dataset to its backend and stores the
// parameters. The returned close function releases database connections.
func (a *App) buildCatalog(ctx context.Context) (*catalog.Catalog, func() error, error) {
	logger := ctxlog.FromContext(ctx)
	cat := catalog.New(nil)

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	files := make(map[string]*catalog.FileBackend)
	objects := make(map[string]*catalog.ObjectBackend)
	tables := make(map[string]*catalog.SQLBackend)
	client := &http.Client{Timeout: 30 * time.Second}

	for _, key := range slices.Sorted(maps.Keys(a.model.Datasets)) {
		ds := a.model.Datasets[key]
		var backend catalog.Backend
		switch ds.Backend {
		case "memory":
			backend = catalog.NewMemoryBackend()
		case "file":
			fb, ok := files[ds.Path]
			if !ok {
				var err error
				if fb, err = catalog.NewFileBackend(ds.Path); err != nil {
					_ = closeAll()
					return nil, nil, fmt.Errorf("dataset %q: %w", key, err)
				}
				files[ds.Path] = fb
			}
			backend = fb
		case "object":
			ob, ok := objects[ds.URL]
			if !ok {
				var err error
				if ob, err = catalog.NewObjectBackend(ds.URL, client); err != nil {
					_ = closeAll()
					return nil, nil, fmt.Errorf("dataset %q: %w", key, err)
				}
				objects[ds.URL] = ob
			}
			backend = ob
		case "postgres":
			id := ds.DSN + "|" + ds.Table
			sb, ok := tables[id]
			if !ok {
				var err error
				if sb, err = catalog.OpenSQL(ctx, ds.DSN, ds.Table); err != nil {
					_ = closeAll()
					return nil, nil, fmt.Errorf("dataset %q: %w", key, err)
				}
				tables[id] = sb
				closers = append(closers, sb.Close)
			}
			backend = sb
		default:
			_ = closeAll()
			return nil, nil, fmt.Errorf("dataset %q: unknown backend %q", key, ds.Backend)
		}
		cat.Set(key, backend)
		logger.Debug("Dataset bound.", "dataset", key, "backend", backend.Describe())
	}

	if err := cat.AddParameters(ctx, a.model.Params); err != nil {
		_ = closeAll()
		return nil, nil, fmt.Errorf("failed to store parameters: %w", err)
	}
	return cat, closeAll, nil
}
