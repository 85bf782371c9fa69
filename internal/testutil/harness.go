package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fusegrid/internal/app"
	"github.com/vk/fusegrid/internal/hclconfig"
	"github.com/vk/fusegrid/internal/registry"
	"github.com/vk/fusegrid/internal/runner"
)

// DirPlaceholder is replaced by the harness data directory in every file the
// harness writes, so datasets can point at test-owned storage.
const DirPlaceholder = "__DATA_DIR__"

// Harness is a project written to a temporary directory plus the app that
// loaded it.
type Harness struct {
	App  *app.App
	Logs *app.SafeBuffer
	// DataDir is a scratch directory for file datasets.
	DataDir string
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Result    *runner.Result
}

// NewHarness writes files (relative path to HCL content) under a temporary
// project directory and loads it with debug logging. cfg.ConfigPaths is
// overwritten.
func NewHarness(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *Harness {
	t.Helper()

	root := t.TempDir()
	projectDir := filepath.Join(root, "project")
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(projectDir, 0755))
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	for name, content := range files {
		filePath := filepath.Join(projectDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		content = strings.ReplaceAll(content, DirPlaceholder, dataDir)
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	cfg.ConfigPaths = []string{projectDir}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &app.SafeBuffer{}
	testApp, err := app.NewApp(context.Background(), logBuffer, appConfig, hclconfig.NewLoader(), modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("FUSEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return &Harness{App: testApp, Logs: logBuffer, DataDir: dataDir}
}

// Run executes the project and captures the outcome.
func (h *Harness) Run(ctx context.Context) *HarnessResult {
	res, err := h.App.Run(ctx)
	return &HarnessResult{LogOutput: h.Logs.String(), Err: err, Result: res}
}

// Plan returns the rendered plan.
func (h *Harness) Plan(ctx context.Context) (string, error) {
	var out strings.Builder
	err := h.App.Plan(ctx, &out)
	return out.String(), err
}

// WriteArtifact stores a JSON document as a file dataset value.
func (h *Harness) WriteArtifact(t *testing.T, key, json string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.DataDir, key+".json"), []byte(json), 0644))
}
