// Package projector turns a pipeline into the coarse task graph an external
// orchestrator runs: one Task per top-level entity, with parent tasks derived
// from artifact overlap and a resolved resource class.
package projector

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/vk/fusegrid/internal/artifact"
	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/vk/fusegrid/internal/errs"
	"github.com/vk/fusegrid/internal/pipeline"
	"github.com/vk/fusegrid/internal/resource"
)

// nonWord matches runs of anything that is not a letter or a digit.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// DisplayName sanitizes an entity name for the orchestrator: every run of
// non-alphanumeric characters, underscores included, becomes one '-', and
// leading or trailing dashes are trimmed.
func DisplayName(name string) string {
	return strings.Trim(nonWord.ReplaceAllString(name, "-"), "-")
}

type emitted struct {
	task     *Task
	produced map[string]struct{}
}

// Project levels p and emits one task per entity in level order. The
// defaultClass overrides the registry default when non-empty. On any error
// no task graph is returned.
func Project(ctx context.Context, p *pipeline.Pipeline, reg *resource.Registry, defaultClass string) (*TaskGraph, error) {
	logger := ctxlog.FromContext(ctx)

	levels, err := p.Levels()
	if err != nil {
		return nil, fmt.Errorf("failed to level pipeline: %w", err)
	}
	logger.Debug("Pipeline leveled.", "levels", len(levels), "entities", p.Len())

	graph := newTaskGraph(p.Len())
	displayOwners := make(map[string]string, p.Len())
	var done []emitted

	for depth, level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, e := range level {
			display := DisplayName(e.Name())
			if display == "" {
				return nil, errs.Configf("entity %q has no usable characters for a display name", e.Name())
			}
			if owner, clash := displayOwners[display]; clash {
				return nil, &errs.NameCollisionError{DisplayName: display, Names: []string{owner, e.Name()}}
			}
			displayOwners[display] = e.Name()

			class, err := reg.Resolve(e.Name(), e.ResourceClass(), defaultClass)
			if err != nil {
				return nil, err
			}

			inputs := artifact.BaseSet(e.Inputs())
			var deps []string
			for _, parent := range done {
				for _, in := range inputs {
					if _, ok := parent.produced[in]; ok {
						deps = append(deps, parent.task.DisplayName)
						break
					}
				}
			}
			sort.Strings(deps)

			task := &Task{
				DisplayName: display,
				Name:        e.Name(),
				Kind:        e.Kind(),
				Nodes:       e.NodeNames(),
				Deps:        deps,
				Resource:    class,
			}
			graph.add(task)

			produced := make(map[string]struct{})
			for _, out := range artifact.BaseSet(e.Outputs()) {
				produced[out] = struct{}{}
			}
			done = append(done, emitted{task: task, produced: produced})

			logger.Debug("Task emitted.", "task", display, "level", depth, "deps", deps, "kind", e.Kind().String())
		}
	}
	return graph, nil
}
