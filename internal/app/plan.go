package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/vk/fusegrid/internal/projector"
	"github.com/vk/fusegrid/internal/render"
)

// Project builds the selected pipeline and projects it onto the task graph.
func (a *App) Project(ctx context.Context) (*projector.TaskGraph, error) {
	ctx = a.context(ctx)
	_, selected, err := a.buildPipeline(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := a.buildResources()
	if err != nil {
		return nil, err
	}
	tg, err := projector.Project(ctx, selected, reg, "")
	if err != nil {
		return nil, fmt.Errorf("failed to project pipeline %q: %w", a.pipelineName(), err)
	}
	return tg, nil
}

// Plan writes the task graph of the selected pipeline to w, either as plain
// records or as a workflow document.
func (a *App) Plan(ctx context.Context, w io.Writer) error {
	logger := ctxlog.FromContext(a.context(ctx))

	tg, err := a.Project(ctx)
	if err != nil {
		return err
	}
	logger.Info("Pipeline projected.", "pipeline", a.pipelineName(), "tasks", tg.Len(), "gpu", tg.HasGPU())

	if a.cfg.Format == FormatWorkflow {
		image := a.cfg.Image
		if image == "" {
			image = a.model.Project.Image
		}
		return render.WriteWorkflow(w, tg.Records(), render.Options{
			Namespace: a.model.Project.Namespace,
			Image:     image,
			Pipeline:  a.pipelineName(),
		})
	}
	return render.WriteRecords(w, tg.Records())
}

// Validate builds the selected pipeline and projects it, which checks the
// function bindings, the graph shape, the display names and the resource
// classes without running anything.
func (a *App) Validate(ctx context.Context) error {
	tg, err := a.Project(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("✅ Pipeline is valid.", "pipeline", a.pipelineName(), "tasks", tg.Len())
	return nil
}
