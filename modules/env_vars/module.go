package env_vars

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/fusegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnvVars returns the process environment as a single map[string]string
// output. An optional string input restricts the map to variables with that
// prefix.
func EnvVars(_ context.Context, inputs []any) ([]any, error) {
	prefix := ""
	switch len(inputs) {
	case 0:
	case 1:
		s, ok := inputs[0].(string)
		if !ok {
			return nil, fmt.Errorf("env_vars prefix must be a string, got %T", inputs[0])
		}
		prefix = s
	default:
		return nil, fmt.Errorf("env_vars takes at most one input, got %d", len(inputs))
	}

	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = pair[1]
		}
	}
	return []any{envMap}, nil
}

// Register registers the function with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("env_vars", EnvVars)
}
