package integration_tests

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fusegrid/internal/app"
	"github.com/vk/fusegrid/internal/catalog"
	"github.com/vk/fusegrid/internal/errs"
	"github.com/vk/fusegrid/internal/pipeline"
	"github.com/vk/fusegrid/internal/testutil"
)

// datasetsHCL binds every artifact of the fixtures to the harness data dir.
const datasetsHCL = `
dataset "raw_data" {
  backend = "file"
  path    = "__DATA_DIR__"
}

dataset "data" {
  backend = "file"
  path    = "__DATA_DIR__"
}

dataset "model" {
  backend = "file"
  path    = "__DATA_DIR__"
}

dataset "predictions" {
  backend = "file"
  path    = "__DATA_DIR__"
}

dataset "score" {
  backend = "file"
  path    = "__DATA_DIR__"
}
`

const fusedPipelineHCL = `
pipeline "__default__" {
  node "preprocess_fun" {
    func    = "preprocess"
    inputs  = ["raw_data"]
    outputs = ["data"]
  }
  group "fused_modelling" {
    node "train_fun" {
      func    = "train"
      inputs  = ["data"]
      outputs = ["model"]
    }
    node "create_predictions" {
      func    = "predict"
      inputs  = ["model"]
      outputs = ["predictions"]
    }
  }
}
`

func loadValue(t *testing.T, dir, key string) (any, bool) {
	t.Helper()
	fb, err := catalog.NewFileBackend(dir)
	require.NoError(t, err)
	ok, err := fb.Exists(context.Background(), key)
	require.NoError(t, err)
	if !ok {
		return nil, false
	}
	v, err := fb.Load(context.Background(), key)
	require.NoError(t, err)
	return v, true
}

func TestRun_GroupIntermediatesStayInMemory(t *testing.T) {
	// --- Arrange ---
	rec := testutil.NewRecorderModule("preprocess", "train", "predict")
	files := map[string]string{
		"datasets.hcl": datasetsHCL,
		"pipeline.hcl": fusedPipelineHCL,
	}
	h := testutil.NewHarness(t, files, app.Config{}, rec)
	h.WriteArtifact(t, "raw_data", "1")

	// --- Act ---
	result := h.Run(context.Background())

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"preprocess", "train", "predict"}, rec.Calls())
	assert.Equal(t, []string{"model"}, result.Result.Transient)
	testutil.AssertNodeRan(t, result, "train_fun")
	testutil.AssertNodeRan(t, result, "create_predictions")

	// raw_data=1 -> data=2 -> model=3 -> predictions=4
	v, ok := loadValue(t, h.DataDir, "predictions")
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
	_, ok = loadValue(t, h.DataDir, "model")
	assert.False(t, ok, "the group-internal model must not be written to its file dataset")
	_, ok = loadValue(t, h.DataDir, "data")
	assert.True(t, ok, "the group's external input stays durable")
}

func TestRun_MemoryDatasetsDisabled(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"datasets.hcl": datasetsHCL,
		"pipeline.hcl": fusedPipelineHCL,
		"runner.hcl":   "runner {\n  use_memory_datasets = false\n}\n",
	}
	h := testutil.NewHarness(t, files, app.Config{}, testutil.NewRecorderModule("preprocess", "train", "predict"))
	h.WriteArtifact(t, "raw_data", "1")

	// --- Act ---
	result := h.Run(context.Background())

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Empty(t, result.Result.Transient)
	v, ok := loadValue(t, h.DataDir, "model")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestRun_OutsideConsumerKeepsArtifactDurable(t *testing.T) {
	// --- Arrange ---
	rec := testutil.NewRecorderModule("preprocess", "train", "predict", "evaluate")
	files := map[string]string{
		"datasets.hcl": datasetsHCL,
		"pipeline.hcl": `
pipeline "__default__" {
  node "preprocess_fun" {
    func    = "preprocess"
    inputs  = ["raw_data"]
    outputs = ["data"]
  }
  group "fused_modelling" {
    node "train_fun" {
      func    = "train"
      inputs  = ["data"]
      outputs = ["model"]
    }
    node "create_predictions" {
      func    = "predict"
      inputs  = ["model"]
      outputs = ["predictions"]
    }
  }
  node "evaluate_fun" {
    func    = "evaluate"
    inputs  = ["model", "predictions"]
    outputs = ["score"]
    tags    = ["evaluation"]
  }
}
`,
	}

	t.Run("full run", func(t *testing.T) {
		h := testutil.NewHarness(t, files, app.Config{}, rec)
		h.WriteArtifact(t, "raw_data", "1")

		result := h.Run(context.Background())

		require.NoError(t, result.Err)
		assert.Empty(t, result.Result.Transient)
		v, ok := loadValue(t, h.DataDir, "score")
		require.True(t, ok)
		assert.Equal(t, 8.0, v) // 1 + model(3) + predictions(4)
	})

	t.Run("filtered run keeps the full pipeline as context", func(t *testing.T) {
		cfg := app.Config{Filter: pipeline.FilterOptions{Names: []string{"train_fun"}}}
		h := testutil.NewHarness(t, files, cfg, testutil.NewRecorderModule("preprocess", "train", "predict", "evaluate"))
		h.WriteArtifact(t, "data", "2")

		result := h.Run(context.Background())

		require.NoError(t, result.Err)
		assert.Equal(t, []string{"train_fun", "create_predictions"}, result.Result.Order)
		assert.Empty(t, result.Result.Transient, "evaluate_fun reads model outside the selection")
		testutil.AssertNodeNotRan(t, result, "preprocess_fun")
		testutil.AssertNodeNotRan(t, result, "evaluate_fun")
		_, ok := loadValue(t, h.DataDir, "model")
		assert.True(t, ok)
	})
}

func TestRun_MissingFreeInputFailsBeforeAnyNode(t *testing.T) {
	// --- Arrange ---
	rec := testutil.NewRecorderModule("preprocess", "train", "predict")
	files := map[string]string{
		"datasets.hcl": datasetsHCL,
		"pipeline.hcl": fusedPipelineHCL,
	}
	h := testutil.NewHarness(t, files, app.Config{}, rec)

	// --- Act ---
	result := h.Run(context.Background())

	// --- Assert ---
	var cfgErr *errs.ConfigurationError
	require.ErrorAs(t, result.Err, &cfgErr)
	assert.Empty(t, rec.Calls())
	assert.Contains(t, result.LogOutput, "Run failed.")
}

func TestRun_ParametersReachNodes(t *testing.T) {
	// --- Arrange ---
	rec := testutil.NewRecorderModule("add")
	files := map[string]string{
		"datasets.hcl": datasetsHCL,
		"pipeline.hcl": `
params {
  offset = 10
  scale  = 0.5
}

pipeline "__default__" {
  node "add_fun" {
    func    = "add"
    inputs  = ["params:offset", "params:scale"]
    outputs = ["score"]
  }
}
`,
	}
	h := testutil.NewHarness(t, files, app.Config{}, rec)

	// --- Act ---
	result := h.Run(context.Background())

	// --- Assert ---
	require.NoError(t, result.Err)
	v, ok := loadValue(t, h.DataDir, "score")
	require.True(t, ok)
	assert.Equal(t, 11.5, v)

	// The harness data dir only holds the dataset written by the run.
	entries, err := os.ReadDir(h.DataDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "score.json", entries[0].Name())
}
