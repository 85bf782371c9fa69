package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vk/fusegrid/internal/node"
	"github.com/vk/fusegrid/internal/registry"
)

// RecorderModule registers one function per name. Each call is recorded and
// produces a single output: the sum of its numeric inputs plus one, so every
// hop through the pipeline is visible in the final value.
type RecorderModule struct {
	names []string

	mu    sync.Mutex
	calls []string
}

// NewRecorderModule creates a recorder for the given function names.
func NewRecorderModule(names ...string) *RecorderModule {
	return &RecorderModule{names: names}
}

// Register implements the registry.Module interface.
func (m *RecorderModule) Register(r *registry.Registry) {
	for _, name := range m.names {
		r.RegisterFunc(name, m.fn(name))
	}
}

func (m *RecorderModule) fn(name string) node.Func {
	return func(_ context.Context, inputs []any) ([]any, error) {
		m.mu.Lock()
		m.calls = append(m.calls, name)
		m.mu.Unlock()

		sum := 1.0
		for i, in := range inputs {
			v, ok := in.(float64)
			if !ok {
				return nil, fmt.Errorf("%s: input %d is %T, want a number", name, i, in)
			}
			sum += v
		}
		return []any{sum}, nil
	}
}

// Calls returns the recorded function names in call order.
func (m *RecorderModule) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}
