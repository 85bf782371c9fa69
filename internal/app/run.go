package app

import (
	"context"
	"fmt"

	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/vk/fusegrid/internal/hooks"
	"github.com/vk/fusegrid/internal/runner"
)

// socketIORetries bounds dashboard connection attempts after the first.
const socketIORetries = 3

// Run executes the selected pipeline with the fused runner. The full
// configured pipeline decides which intermediate artifacts stay durable.
func (a *App) Run(ctx context.Context) (*runner.Result, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	if a.cfg.StatusPort > 0 {
		a.startStatusServer(ctx, a.cfg.StatusPort)
		defer func() { _ = a.closeStatusServer(ctx) }()
	}

	full, selected, err := a.buildPipeline(ctx)
	if err != nil {
		return nil, err
	}
	cat, closeCatalog, err := a.buildCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeCatalog(); err != nil {
			logger.Warn("Failed to close catalog backends.", "error", err)
		}
	}()

	manager := hooks.NewManager(hooks.LogHook{}, a.runs)
	if sio := a.model.SocketIO; sio != nil {
		h, err := hooks.DialSocketIO(ctx, hooks.SocketIOConfig{
			URL:                sio.URL,
			Namespace:          sio.Namespace,
			InsecureSkipVerify: sio.InsecureSkipVerify,
			MaxRetries:         socketIORetries,
		})
		if err != nil {
			logger.Warn("Socket.io hook disabled.", "error", err)
		} else {
			manager.Register(h)
			defer h.Close()
		}
	}

	fr := runner.NewFusedRunner(
		runner.WithHooks(manager),
		runner.WithAsyncIO(a.model.Runner.AsyncIO || a.cfg.AsyncIO),
		runner.WithMemoryDatasets(a.model.Runner.UseMemoryDatasets),
		runner.WithPipelineName(a.pipelineName()),
	)

	if selected.Len() == 0 {
		logger.Warn("No entities selected, execution not required.")
	}
	logger.Info("🚀 Starting run...", "pipeline", a.pipelineName(), "entities", selected.Len())
	res, err := fr.Execute(ctx, selected, cat, full)
	if err != nil {
		return res, fmt.Errorf("execution failed: %w", err)
	}
	logger.Info("🏁 Execution finished.", "run_id", res.RunID, "nodes", len(res.Order), "transient", len(res.Transient))
	return res, nil
}
