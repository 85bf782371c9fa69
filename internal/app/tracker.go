package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vk/fusegrid/internal/hooks"
)

// RunStatus is the status server's view of one run.
type RunStatus struct {
	RunID      string     `json:"run_id"`
	Pipeline   string     `json:"pipeline"`
	State      string     `json:"state"`
	Current    string     `json:"current,omitempty"`
	Completed  []string   `json:"completed"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// runTracker is a hook that remembers the progress of every run of the app.
type runTracker struct {
	hooks.Base

	mu    sync.RWMutex
	runs  map[string]*RunStatus
	order []string
}

func newRunTracker() *runTracker {
	return &runTracker{runs: make(map[string]*RunStatus)}
}

func (t *runTracker) update(id string, fn func(s *RunStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.runs[id]; ok {
		fn(s)
	}
}

func (t *runTracker) BeforeRun(_ context.Context, run hooks.RunInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[run.RunID] = &RunStatus{
		RunID:     run.RunID,
		Pipeline:  run.Pipeline,
		State:     "running",
		Completed: []string{},
		StartedAt: time.Now().UTC(),
	}
	t.order = append(t.order, run.RunID)
}

func (t *runTracker) AfterRun(_ context.Context, run hooks.RunInfo) {
	t.update(run.RunID, func(s *RunStatus) {
		now := time.Now().UTC()
		s.State, s.Current, s.FinishedAt = "completed", "", &now
	})
}

func (t *runTracker) OnRunError(_ context.Context, run hooks.RunInfo, err error) {
	t.update(run.RunID, func(s *RunStatus) {
		now := time.Now().UTC()
		s.State, s.Error, s.FinishedAt = "failed", err.Error(), &now
	})
}

func (t *runTracker) BeforeNode(_ context.Context, run hooks.RunInfo, node string) {
	t.update(run.RunID, func(s *RunStatus) { s.Current = node })
}

func (t *runTracker) AfterNode(_ context.Context, run hooks.RunInfo, node string) {
	t.update(run.RunID, func(s *RunStatus) {
		s.Current = ""
		s.Completed = append(s.Completed, node)
	})
}

// Get returns a copy of the status of one run.
func (t *runTracker) Get(id string) (RunStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.runs[id]
	if !ok {
		return RunStatus{}, false
	}
	return copyStatus(s), true
}

// List returns copies of all statuses in start order.
func (t *runTracker) List() []RunStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RunStatus, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, copyStatus(t.runs[id]))
	}
	return out
}

func copyStatus(s *RunStatus) RunStatus {
	c := *s
	c.Completed = slices.Clone(s.Completed)
	return c
}
