// Package hooks lets observers follow a run. The runner calls the Manager at
// fixed points; hooks never influence execution and cannot fail it.
package hooks

import (
	"context"

	"github.com/vk/fusegrid/internal/catalog"
)

// RunInfo identifies the run a hook is called for.
type RunInfo struct {
	RunID    string
	Pipeline string
	Catalog  *catalog.Catalog
}

// Hook receives run and node notifications. Embed Base to implement only the
// calls of interest.
type Hook interface {
	BeforeRun(ctx context.Context, run RunInfo)
	AfterRun(ctx context.Context, run RunInfo)
	OnRunError(ctx context.Context, run RunInfo, err error)
	BeforeNode(ctx context.Context, run RunInfo, node string)
	AfterNode(ctx context.Context, run RunInfo, node string)
	OnNodeError(ctx context.Context, run RunInfo, node string, err error)
}

// Base implements Hook with no-ops.
type Base struct{}

func (Base) BeforeRun(context.Context, RunInfo)                  {}
func (Base) AfterRun(context.Context, RunInfo)                   {}
func (Base) OnRunError(context.Context, RunInfo, error)          {}
func (Base) BeforeNode(context.Context, RunInfo, string)         {}
func (Base) AfterNode(context.Context, RunInfo, string)          {}
func (Base) OnNodeError(context.Context, RunInfo, string, error) {}

// Manager fans every call out to its hooks in registration order.
type Manager struct {
	hooks []Hook
}

// NewManager creates a manager over hooks. Nil hooks are skipped.
func NewManager(hooks ...Hook) *Manager {
	m := &Manager{}
	for _, h := range hooks {
		m.Register(h)
	}
	return m
}

// Register appends a hook.
func (m *Manager) Register(h Hook) {
	if h != nil {
		m.hooks = append(m.hooks, h)
	}
}

// Len returns the number of registered hooks.
func (m *Manager) Len() int { return len(m.hooks) }

func (m *Manager) BeforeRun(ctx context.Context, run RunInfo) {
	for _, h := range m.hooks {
		h.BeforeRun(ctx, run)
	}
}

func (m *Manager) AfterRun(ctx context.Context, run RunInfo) {
	for _, h := range m.hooks {
		h.AfterRun(ctx, run)
	}
}

func (m *Manager) OnRunError(ctx context.Context, run RunInfo, err error) {
	for _, h := range m.hooks {
		h.OnRunError(ctx, run, err)
	}
}

func (m *Manager) BeforeNode(ctx context.Context, run RunInfo, node string) {
	for _, h := range m.hooks {
		h.BeforeNode(ctx, run, node)
	}
}

func (m *Manager) AfterNode(ctx context.Context, run RunInfo, node string) {
	for _, h := range m.hooks {
		h.AfterNode(ctx, run, node)
	}
}

func (m *Manager) OnNodeError(ctx context.Context, run RunInfo, node string, err error) {
	for _, h := range m.hooks {
		h.OnNodeError(ctx, run, node, err)
	}
}
