// Package runner executes pipelines. FusedRunner unpacks fused groups back
// into their member nodes, moves the group-internal artifacts nobody else
// needs to run-scoped memory, and hands the flat node list to a
// SequentialRunner.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/fusegrid/internal/artifact"
	"github.com/vk/fusegrid/internal/catalog"
	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/vk/fusegrid/internal/fusion"
	"github.com/vk/fusegrid/internal/hooks"
	"github.com/vk/fusegrid/internal/pipeline"
)

// Result describes a finished (or aborted) run.
type Result struct {
	RunID    string
	Pipeline string
	State    State
	// Order lists the nodes that completed, in execution order.
	Order []string
	// Transient lists the artifacts that were kept in run-scoped memory.
	Transient []string
}

// FusedRunner runs pipelines that may contain fused groups. It can be reused;
// each Execute call is an independent run.
type FusedRunner struct {
	opts options
	seq  *SequentialRunner
}

// NewFusedRunner creates a runner.
func NewFusedRunner(opts ...Option) *FusedRunner {
	o := build(opts)
	return &FusedRunner{opts: o, seq: &SequentialRunner{opts: o}}
}

// run holds the mutable state of one Execute call.
type run struct {
	mu     sync.Mutex
	result Result
}

func (r *run) moveTo(next State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.result.State.canMoveTo(next) {
		return fmt.Errorf("illegal run state transition %s -> %s", r.result.State, next)
	}
	r.result.State = next
	return nil
}

// Execute runs p against cat. full is the complete pipeline p was filtered
// from; it decides which intermediate artifacts must stay durable because
// an entity outside the run reads them. A nil full means p itself.
//
// Transient artifacts are bound to run-scoped memory for the duration of the
// call. Their previous catalog bindings are restored before Execute returns.
func (f *FusedRunner) Execute(ctx context.Context, p *pipeline.Pipeline, cat *catalog.Catalog, full *pipeline.Pipeline) (*Result, error) {
	if full == nil {
		full = p
	}
	r := &run{result: Result{RunID: uuid.NewString(), Pipeline: f.opts.pipelineName, State: StatePending}}
	ctx = ctxlog.With(ctx, "run_id", r.result.RunID)
	logger := ctxlog.FromContext(ctx)
	info := hooks.RunInfo{RunID: r.result.RunID, Pipeline: f.opts.pipelineName, Catalog: cat}

	f.opts.hooks.BeforeRun(ctx, info)

	fail := func(err error) (*Result, error) {
		if terr := r.moveTo(StateFailed); terr != nil {
			logger.Error("Run state is inconsistent.", "error", terr)
		}
		f.opts.hooks.OnRunError(ctx, info, err)
		return r.snapshot(), err
	}

	if err := r.moveTo(StateFlattening); err != nil {
		return fail(err)
	}
	transient := catalog.NewMemoryBackend()
	defer transient.Release()

	keys := TransientArtifacts(p, full)
	if f.opts.useMemoryDatasets {
		defer rebind(ctx, cat, keys, transient)()
		r.result.Transient = keys
	} else if len(keys) > 0 {
		logger.Debug("Memory datasets disabled, intermediate artifacts stay on their backends.", "count", len(keys))
	}
	nodes := p.Flatten()
	logger.Debug("Pipeline flattened.", "entities", p.Len(), "nodes", len(nodes), "transient", len(r.result.Transient))

	if err := r.moveTo(StateRunning); err != nil {
		return fail(err)
	}
	order, err := f.seq.Run(ctx, nodes, cat, info)
	r.mu.Lock()
	r.result.Order = order
	r.mu.Unlock()
	if err != nil {
		return fail(err)
	}

	if err := r.moveTo(StateCompleted); err != nil {
		return fail(err)
	}
	f.opts.hooks.AfterRun(ctx, info)
	return r.snapshot(), nil
}

// rebind points keys at b and returns a func restoring the earlier bindings.
func rebind(ctx context.Context, cat *catalog.Catalog, keys []string, b catalog.Backend) func() {
	logger := ctxlog.FromContext(ctx)
	previous := make(map[string]catalog.Backend, len(keys))
	for _, key := range keys {
		if cat.Bound(key) {
			previous[key] = cat.Get(key)
		}
		logger.Debug("Rebinding artifact to run memory.", "artifact", key, "previous", cat.Get(key).Describe())
		cat.Set(key, b)
	}
	return func() {
		for _, key := range keys {
			if prev, ok := previous[key]; ok {
				cat.Set(key, prev)
			} else {
				cat.Unset(key)
			}
		}
	}
}

func (r *run) snapshot() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.result
	return &res
}

// TransientArtifacts returns, for every group in p, the artifacts it produces
// that only its own members read. An artifact stays durable when any other
// top-level entity of full (or of p) reads its base key, or when it is one of
// the group's external outputs. Every variant of a transient base key that a
// member references is returned, so producer and consumer share run memory.
func TransientArtifacts(p, full *pipeline.Pipeline) []string {
	var out []string
	for _, e := range p.Entities() {
		if e.Kind() != pipeline.KindGroup {
			continue
		}
		out = append(out, groupTransients(e.Group(), p, full)...)
	}
	return out
}

func groupTransients(g *fusion.Group, p, full *pipeline.Pipeline) []string {
	needed := make(map[string]struct{})
	mark := func(keys []string) {
		for _, k := range artifact.BaseSet(keys) {
			needed[k] = struct{}{}
		}
	}
	seen := make(map[string]struct{})
	for _, src := range []*pipeline.Pipeline{full, p} {
		for _, other := range src.Entities() {
			if other.Name() == g.Name() {
				continue
			}
			if _, dup := seen[other.Name()]; dup {
				continue
			}
			seen[other.Name()] = struct{}{}
			mark(other.Inputs())
		}
	}
	mark(g.ExternalOutputs())
	mark(g.ExternalInputs())

	transient := make(map[string]struct{})
	for _, key := range g.ProducedArtifacts() {
		if _, keep := needed[artifact.Base(key)]; !keep {
			transient[artifact.Base(key)] = struct{}{}
		}
	}

	var out []string
	listed := make(map[string]struct{})
	for _, m := range g.Members() {
		for _, key := range append(m.Outputs(), m.Inputs()...) {
			if artifact.IsParameter(key) {
				continue
			}
			if _, ok := transient[artifact.Base(key)]; !ok {
				continue
			}
			if _, dup := listed[key]; dup {
				continue
			}
			listed[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}
