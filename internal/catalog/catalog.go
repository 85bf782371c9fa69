// Package catalog binds artifact keys to the storage backends that hold their
// values. Keys without an explicit binding fall back to the catalog default,
// which is an in-memory backend unless configured otherwise.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/fusegrid/internal/artifact"
)

// ErrNotFound is returned by backends when no value is stored for a key.
var ErrNotFound = errors.New("artifact not found")

// Backend stores artifact values. Implementations must be safe for
// concurrent use.
type Backend interface {
	Load(ctx context.Context, key string) (any, error)
	Save(ctx context.Context, key string, value any) error
	Exists(ctx context.Context, key string) (bool, error)
	// Describe returns a short human-readable label for logs.
	Describe() string
}

// Catalog maps artifact keys to backends. Bindings are looked up by the full
// key first and then by its base key. Backends always receive the base key,
// so transcoded variants bound to one backend share a single stored value.
type Catalog struct {
	mu       sync.RWMutex
	bindings map[string]Backend
	fallback Backend
}

// New creates a catalog whose unbound keys resolve to fallback. A nil
// fallback means a fresh MemoryBackend.
func New(fallback Backend) *Catalog {
	if fallback == nil {
		fallback = NewMemoryBackend()
	}
	return &Catalog{
		bindings: make(map[string]Backend),
		fallback: fallback,
	}
}

// Get returns the backend bound to key, the backend bound to its base key,
// or the fallback.
func (c *Catalog) Get(key string) Backend {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if b, ok := c.bindings[key]; ok {
		return b
	}
	if b, ok := c.bindings[artifact.Base(key)]; ok {
		return b
	}
	return c.fallback
}

// Bound reports whether key has an explicit binding.
func (c *Catalog) Bound(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[key]
	return ok
}

// Set binds key to b, replacing any earlier binding.
func (c *Catalog) Set(key string, b Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[key] = b
}

// Unset removes the explicit binding of key, if any.
func (c *Catalog) Unset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bindings, key)
}

// Keys returns the explicitly bound keys, sorted.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load reads key from its backend.
func (c *Catalog) Load(ctx context.Context, key string) (any, error) {
	b := c.Get(key)
	v, err := b.Load(ctx, artifact.Base(key))
	if err != nil {
		return nil, fmt.Errorf("failed to load %q from %s: %w", key, b.Describe(), err)
	}
	return v, nil
}

// Save writes value for key to its backend.
func (c *Catalog) Save(ctx context.Context, key string, value any) error {
	b := c.Get(key)
	if err := b.Save(ctx, artifact.Base(key), value); err != nil {
		return fmt.Errorf("failed to save %q to %s: %w", key, b.Describe(), err)
	}
	return nil
}

// Exists reports whether key currently has a value.
func (c *Catalog) Exists(ctx context.Context, key string) (bool, error) {
	b := c.Get(key)
	ok, err := b.Exists(ctx, artifact.Base(key))
	if err != nil {
		return false, fmt.Errorf("failed to check %q on %s: %w", key, b.Describe(), err)
	}
	return ok, nil
}

// AddParameters stores each parameter under its params: key and the whole
// set under the aggregate parameters key, all in one memory backend.
func (c *Catalog) AddParameters(ctx context.Context, params map[string]any) error {
	mem := NewMemoryBackend()
	all := make(map[string]any, len(params))
	for name, v := range params {
		key := artifact.ParamPrefix + name
		if err := mem.Save(ctx, key, v); err != nil {
			return err
		}
		c.Set(key, mem)
		all[name] = v
	}
	if err := mem.Save(ctx, artifact.Parameters, all); err != nil {
		return err
	}
	c.Set(artifact.Parameters, mem)
	return nil
}
