package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.RegisterFunc("noop", func(context.Context, []any) ([]any, error) { return nil, nil })
}

func TestRegistry(t *testing.T) {
	r := New()
	testModule{}.Register(r)

	fn, err := r.Func("noop")
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, []string{"noop"}, r.Names())
	assert.Equal(t, 1, r.Len())

	_, err = r.Func("missing")
	assert.ErrorContains(t, err, "node function 'missing' is not registered")
}

func TestRegisterFunc_DuplicatePanics(t *testing.T) {
	r := New()
	testModule{}.Register(r)
	assert.PanicsWithValue(t, "node function with name 'noop' already registered", func() {
		testModule{}.Register(r)
	})
}
