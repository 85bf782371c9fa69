package catalog

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in process memory. It is used for parameters,
// unbound keys and the run-scoped transient storage of fused groups.
type MemoryBackend struct {
	values sync.Map // Key: artifact key, Value: any
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(ctx context.Context, key string) (any, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Save(ctx context.Context, key string, value any) error {
	m.values.Store(key, value)
	return nil
}

func (m *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.values.Load(key)
	return ok, nil
}

// Release drops every stored value.
func (m *MemoryBackend) Release() {
	m.values.Clear()
}

func (m *MemoryBackend) Describe() string { return "memory" }
