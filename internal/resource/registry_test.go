package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fusegrid/internal/errs"
)

func machineTypes() map[string]Class {
	return map[string]Class{
		"default":       {Mem: 16, CPU: 2, NumGPU: 0},
		"n1-standard-4": {Mem: 16, CPU: 4, NumGPU: 0},
		"n1-standard-8": {Mem: 16, CPU: 8, NumGPU: 0},
		"gpu-node":      {Mem: 32, CPU: 8, NumGPU: 1},
	}
}

func TestNewRegistry_Shape(t *testing.T) {
	tests := []struct {
		name    string
		classes map[string]Class
		def     string
	}{
		{name: "no classes", classes: nil, def: "default"},
		{name: "no default", classes: machineTypes(), def: ""},
		{name: "empty class name", classes: map[string]Class{"": {Mem: 1, CPU: 1}}, def: "x"},
		{name: "zero cpu", classes: map[string]Class{"small": {Mem: 1}}, def: "small"},
		{name: "negative gpu", classes: map[string]Class{"small": {Mem: 1, CPU: 1, NumGPU: -1}}, def: "small"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.classes, tt.def)
			var cfgErr *errs.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestResolve(t *testing.T) {
	reg, err := NewRegistry(machineTypes(), "default")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "gpu-node", "n1-standard-4", "n1-standard-8"}, reg.Names())

	c, err := reg.Resolve("fused_modelling", "n1-standard-8", "")
	require.NoError(t, err)
	assert.Equal(t, Class{Mem: 16, CPU: 8}, c)

	c, err = reg.Resolve("preprocess_fun", "", "")
	require.NoError(t, err)
	assert.Equal(t, Class{Mem: 16, CPU: 2}, c)

	c, err = reg.Resolve("preprocess_fun", "", "gpu-node")
	require.NoError(t, err)
	assert.Equal(t, 1, c.NumGPU)

	_, err = reg.Resolve("train", "missing", "")
	var notFound *errs.ResourceClassNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "train", notFound.Vertex)
	assert.Equal(t, "missing", notFound.Class)
}

func TestResolve_UnknownDefaultFailsLazily(t *testing.T) {
	reg, err := NewRegistry(machineTypes(), "absent")
	require.NoError(t, err)

	_, err = reg.Resolve("a", "gpu-node", "")
	require.NoError(t, err)

	_, err = reg.Resolve("b", "", "")
	var notFound *errs.ResourceClassNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "absent", notFound.Class)
}
