package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fusegrid/internal/registry"
)

func TestIdentity(t *testing.T) {
	in := []any{1, "two", map[string]any{"three": 3.0}}
	out, err := Identity(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out[0] = 42
	assert.Equal(t, 1, in[0], "output slice must not alias the input slice")
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	_, err := r.Func("identity")
	assert.NoError(t, err)
}
