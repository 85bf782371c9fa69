package testutil

import (
	"github.com/vk/fusegrid/internal/node"
	"github.com/vk/fusegrid/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single function.
type SimpleModule struct {
	Name string
	Fn   node.Func
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Name != "" && m.Fn != nil {
		r.RegisterFunc(m.Name, m.Fn)
	}
}
