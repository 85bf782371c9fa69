package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fusegrid/internal/registry"
)

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	out, err := Print(&buf)(context.Background(), []any{
		map[string]any{"b": 2.0, "a": "x"},
		nil,
		"plain",
	})
	require.NoError(t, err)
	assert.Empty(t, out)

	want := "    [0]\n      a = x\n      b = 2\n    [1]\n      (null)\n    [2]\n      \"plain\"\n"
	assert.Equal(t, want, buf.String())
}

func TestRegister_UsesConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	r := registry.New()
	(&Module{Out: &buf}).Register(r)

	fn, err := r.Func("print")
	require.NoError(t, err)
	_, err = fn(context.Background(), []any{map[string]string{"k": "v"}})
	require.NoError(t, err)
	assert.Equal(t, "    [0]\n      k = \"v\"\n", buf.String())
}
