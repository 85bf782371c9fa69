package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvVars(t *testing.T) {
	t.Setenv("FUSEGRID_TEST_ALPHA", "1")
	t.Setenv("FUSEGRID_TEST_BETA", "2")

	out, err := EnvVars(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	all := out[0].(map[string]string)
	assert.Equal(t, "1", all["FUSEGRID_TEST_ALPHA"])

	out, err = EnvVars(context.Background(), []any{"FUSEGRID_TEST_"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"FUSEGRID_TEST_ALPHA": "1", "FUSEGRID_TEST_BETA": "2"}, out[0])
}

func TestEnvVars_BadInput(t *testing.T) {
	_, err := EnvVars(context.Background(), []any{42})
	assert.ErrorContains(t, err, "must be a string")

	_, err = EnvVars(context.Background(), []any{"a", "b"})
	assert.ErrorContains(t, err, "at most one input")
}
