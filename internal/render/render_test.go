package render

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vk/fusegrid/internal/projector"
)

func records() []projector.Record {
	return []projector.Record{
		{Name: "preprocess-fun", Nodes: "preprocess_fun", Deps: []string{}, Mem: 16, CPU: 2},
		{Name: "train-fun", Nodes: "train_fun", Deps: []string{"preprocess-fun"}, Mem: 32, CPU: 8, NumGPU: 1},
	}
}

func TestTemplateFor(t *testing.T) {
	assert.Equal(t, TemplateCPU, TemplateFor(projector.Record{}))
	assert.Equal(t, TemplateGPU, TemplateFor(projector.Record{NumGPU: 2}))
}

func TestNewWorkflow(t *testing.T) {
	wf, err := NewWorkflow(records(), Options{Namespace: "ml", Image: "repo/img:1", Pipeline: "__default__"})
	require.NoError(t, err)

	assert.Equal(t, "default-", wf.Metadata.GenerateName)
	assert.Equal(t, "ml", wf.Metadata.Namespace)
	assert.Equal(t, TemplatePipeline, wf.Spec.Entrypoint)
	require.Len(t, wf.Spec.Templates, 3)

	gpu := wf.Spec.Templates[1]
	assert.Equal(t, TemplateGPU, gpu.Name)
	assert.Equal(t, "{{inputs.parameters.num_gpu}}", gpu.Container.Resources.Limits["nvidia.com/gpu"])
	assert.Nil(t, wf.Spec.Templates[0].Container.Resources.Limits)
	assert.Equal(t, []string{"run", "--pipeline", "__default__", "--nodes", "{{inputs.parameters.nodes}}"},
		gpu.Container.Args)

	want := []DAGTask{
		{
			Name:         "preprocess-fun",
			Template:     TemplateCPU,
			Dependencies: []string{},
			Arguments: Arguments{Parameters: []Parameter{
				{Name: "nodes", Value: "preprocess_fun"},
				{Name: "mem", Value: "16"},
				{Name: "cpu", Value: "2"},
				{Name: "num_gpu", Value: "0"},
			}},
		},
		{
			Name:         "train-fun",
			Template:     TemplateGPU,
			Dependencies: []string{"preprocess-fun"},
			Arguments: Arguments{Parameters: []Parameter{
				{Name: "nodes", Value: "train_fun"},
				{Name: "mem", Value: "32"},
				{Name: "cpu", Value: "8"},
				{Name: "num_gpu", Value: "1"},
			}},
		},
	}
	if diff := cmp.Diff(want, wf.Spec.Templates[2].DAG.Tasks); diff != "" {
		t.Errorf("dag tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestNewWorkflow_ConfigPathAndCommand(t *testing.T) {
	wf, err := NewWorkflow(nil, Options{Image: "img", Pipeline: "p", Command: "/bin/fg", ConfigPath: "/etc/fg"})
	require.NoError(t, err)
	c := wf.Spec.Templates[0].Container
	assert.Equal(t, []string{"/bin/fg"}, c.Command)
	assert.Equal(t, []string{"--config", "/etc/fg"}, c.Args[len(c.Args)-2:])
}

func TestNewWorkflow_Validation(t *testing.T) {
	_, err := NewWorkflow(nil, Options{Pipeline: "p"})
	assert.ErrorContains(t, err, "image is required")

	_, err = NewWorkflow(nil, Options{Image: "img"})
	assert.ErrorContains(t, err, "pipeline name is required")
}

func TestWriteWorkflow_IsValidYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkflow(&buf, records(), Options{Image: "img", Pipeline: "p"}))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "argoproj.io/v1alpha1", doc["apiVersion"])
	assert.Equal(t, "Workflow", doc["kind"])
	assert.Contains(t, buf.String(), "template: kedro-gpu")
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records()[:1]))
	want := "- name: preprocess-fun\n  nodes: preprocess_fun\n  deps: []\n  mem: 16\n  cpu: 2\n  num_gpu: 0\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteRecords(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
