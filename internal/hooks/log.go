package hooks

import (
	"context"

	"github.com/vk/fusegrid/internal/ctxlog"
)

// LogHook writes one structured log line per notification to the context
// logger.
type LogHook struct{}

func (LogHook) BeforeRun(ctx context.Context, run RunInfo) {
	ctxlog.FromContext(ctx).Info("🚀 Run starting.", "run_id", run.RunID, "pipeline", run.Pipeline)
}

func (LogHook) AfterRun(ctx context.Context, run RunInfo) {
	ctxlog.FromContext(ctx).Info("🏁 Run finished.", "run_id", run.RunID, "pipeline", run.Pipeline)
}

func (LogHook) OnRunError(ctx context.Context, run RunInfo, err error) {
	ctxlog.FromContext(ctx).Error("Run failed.", "run_id", run.RunID, "pipeline", run.Pipeline, "error", err)
}

func (LogHook) BeforeNode(ctx context.Context, run RunInfo, node string) {
	ctxlog.FromContext(ctx).Debug("Node starting.", "run_id", run.RunID, "node", node)
}

func (LogHook) AfterNode(ctx context.Context, run RunInfo, node string) {
	ctxlog.FromContext(ctx).Info("Node completed.", "run_id", run.RunID, "node", node)
}

func (LogHook) OnNodeError(ctx context.Context, run RunInfo, node string, err error) {
	ctxlog.FromContext(ctx).Error("Node failed.", "run_id", run.RunID, "node", node, "error", err)
}
