package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_FallbackAndBindings(t *testing.T) {
	ctx := context.Background()
	fallback := NewMemoryBackend()
	c := New(fallback)

	assert.Same(t, fallback, c.Get("anything"))
	assert.False(t, c.Bound("anything"))

	dedicated := NewMemoryBackend()
	c.Set("model", dedicated)
	assert.Same(t, dedicated, c.Get("model"))
	assert.True(t, c.Bound("model"))
	assert.Equal(t, []string{"model"}, c.Keys())

	require.NoError(t, c.Save(ctx, "model", 42))
	ok, err := fallback.Exists(ctx, "model")
	require.NoError(t, err)
	assert.False(t, ok, "bound key must not leak into the fallback")

	v, err := c.Load(ctx, "model")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCatalog_TranscodedVariantsShareStorage(t *testing.T) {
	ctx := context.Background()
	c := New(nil)
	shared := NewMemoryBackend()
	c.Set("table@pandas", shared)
	c.Set("table@spark", shared)

	require.NoError(t, c.Save(ctx, "table@pandas", "rows"))
	ok, err := c.Exists(ctx, "table@spark")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := c.Load(ctx, "table@spark")
	require.NoError(t, err)
	assert.Equal(t, "rows", v)

	ok, err = shared.Exists(ctx, "table")
	require.NoError(t, err)
	assert.True(t, ok, "backends are addressed by the base key")
}

func TestCatalog_VariantFallsBackToBaseBinding(t *testing.T) {
	ctx := context.Background()
	c := New(nil)
	base := NewMemoryBackend()
	c.Set("table", base)
	assert.Same(t, base, c.Get("table@csv"))

	require.NoError(t, c.Save(ctx, "table@csv", 1))
	v, err := c.Load(ctx, "table@json")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	pinned := NewMemoryBackend()
	c.Set("table@parquet", pinned)
	assert.Same(t, pinned, c.Get("table@parquet"), "an exact binding wins over the base binding")
	ok, err := c.Exists(ctx, "table@parquet")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalog_Unset(t *testing.T) {
	fallback := NewMemoryBackend()
	c := New(fallback)
	c.Set("model", NewMemoryBackend())
	c.Unset("model")
	assert.False(t, c.Bound("model"))
	assert.Same(t, fallback, c.Get("model"))
	c.Unset("never_bound")
}

func TestCatalog_LoadMissingWrapsErrNotFound(t *testing.T) {
	_, err := New(nil).Load(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestCatalog_AddParameters(t *testing.T) {
	ctx := context.Background()
	c := New(nil)
	require.NoError(t, c.AddParameters(ctx, map[string]any{"lr": 0.01, "features": []any{"a", "b"}}))

	v, err := c.Load(ctx, "params:lr")
	require.NoError(t, err)
	assert.Equal(t, 0.01, v)

	all, err := c.Load(ctx, "parameters")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"lr": 0.01, "features": []any{"a", "b"}}, all)
	assert.Equal(t, []string{"parameters", "params:features", "params:lr"}, c.Keys())
}

func TestMemoryBackend_Release(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	require.NoError(t, m.Save(ctx, "x", 1))
	m.Release()
	_, err := m.Load(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
