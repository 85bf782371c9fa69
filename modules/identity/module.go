package identity

import (
	"context"

	"github.com/vk/fusegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Identity returns its inputs unchanged, one output per input.
func Identity(_ context.Context, inputs []any) ([]any, error) {
	out := make([]any, len(inputs))
	copy(out, inputs)
	return out, nil
}

// Register registers the function with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("identity", Identity)
}
