package runner

import (
	"context"
	"fmt"

	"github.com/vk/fusegrid/internal/catalog"
	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/vk/fusegrid/internal/errs"
	"github.com/vk/fusegrid/internal/hooks"
	"github.com/vk/fusegrid/internal/node"
	"github.com/vk/fusegrid/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// SequentialRunner executes plain nodes one at a time in dependency order.
// It fires node-level hooks only; run-level hooks belong to the caller.
type SequentialRunner struct {
	opts options
}

// NewSequentialRunner creates a runner. Only WithHooks and WithAsyncIO
// affect it.
func NewSequentialRunner(opts ...Option) *SequentialRunner {
	return &SequentialRunner{opts: build(opts)}
}

// Run levels nodes, checks that every free input is available in cat, and
// executes the nodes. It returns the names of the nodes that completed, in
// order. The first failure stops the run and is returned as a
// *errs.NodeExecutionError; nothing already saved is rolled back.
func (r *SequentialRunner) Run(ctx context.Context, nodes []*node.Node, cat *catalog.Catalog, run hooks.RunInfo) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	p, err := pipeline.FromNodes(nodes...)
	if err != nil {
		return nil, err
	}
	levels, err := p.Levels()
	if err != nil {
		return nil, fmt.Errorf("failed to order nodes: %w", err)
	}
	if err := checkInputs(ctx, p, cat); err != nil {
		return nil, err
	}

	var done []string
	for _, level := range levels {
		for _, e := range level {
			n := e.Node()
			if err := r.runNode(ctx, n, cat, run); err != nil {
				logger.Debug("Stopping run after node failure.", "node", n.Name(), "completed", len(done))
				return done, err
			}
			done = append(done, n.Name())
		}
	}
	return done, nil
}

func checkInputs(ctx context.Context, p *pipeline.Pipeline, cat *catalog.Catalog) error {
	var missing []string
	for _, in := range p.Inputs() {
		ok, err := cat.Exists(ctx, in)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, in)
		}
	}
	if len(missing) > 0 {
		return errs.Configf("pipeline inputs not available in the catalog: %v", missing)
	}
	return nil
}

func (r *SequentialRunner) runNode(ctx context.Context, n *node.Node, cat *catalog.Catalog, run hooks.RunInfo) error {
	fail := func(err error) error {
		r.opts.hooks.OnNodeError(ctx, run, n.Name(), err)
		return &errs.NodeExecutionError{Node: n.Name(), Err: err}
	}

	// A cancelled run is reported against the node that would run next.
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	r.opts.hooks.BeforeNode(ctx, run, n.Name())

	inputs, err := r.load(ctx, cat, n.Inputs())
	if err != nil {
		return fail(err)
	}
	outputs, err := n.Run(ctx, inputs)
	if err != nil {
		return fail(err)
	}
	if err := r.save(ctx, cat, n.Outputs(), outputs); err != nil {
		return fail(err)
	}

	r.opts.hooks.AfterNode(ctx, run, n.Name())
	return nil
}

func (r *SequentialRunner) load(ctx context.Context, cat *catalog.Catalog, keys []string) ([]any, error) {
	values := make([]any, len(keys))
	if !r.opts.asyncIO {
		for i, key := range keys {
			v, err := cat.Load(ctx, key)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			v, err := cat.Load(gctx, key)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *SequentialRunner) save(ctx context.Context, cat *catalog.Catalog, keys []string, values []any) error {
	if !r.opts.asyncIO {
		for i, key := range keys {
			if err := cat.Save(ctx, key, values[i]); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			return cat.Save(gctx, key, values[i])
		})
	}
	return g.Wait()
}
