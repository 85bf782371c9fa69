package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fusegrid/internal/catalog"
	"github.com/vk/fusegrid/internal/errs"
	"github.com/vk/fusegrid/internal/hooks"
	"github.com/vk/fusegrid/internal/node"
)

func TestSequentialRunner_OrdersByDependencies(t *testing.T) {
	// Declared out of order on purpose.
	nodes := []*node.Node{
		node.MustNew("c", sum, []string{"a_out", "b_out"}, []string{"c_out"}),
		node.MustNew("b", double, []string{"a_out"}, []string{"b_out"}),
		node.MustNew("a", double, []string{"seed"}, []string{"a_out"}),
	}
	cat := catalog.New(nil)
	require.NoError(t, cat.Save(context.Background(), "seed", 3))

	order, err := NewSequentialRunner().Run(context.Background(), nodes, cat, hooks.RunInfo{RunID: "r"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)

	v, err := cat.Load(context.Background(), "c_out")
	require.NoError(t, err)
	assert.Equal(t, 6+12, v)
}

func TestSequentialRunner_Cycle(t *testing.T) {
	nodes := []*node.Node{
		node.MustNew("a", double, []string{"y"}, []string{"x"}),
		node.MustNew("b", double, []string{"x"}, []string{"y"}),
	}
	_, err := NewSequentialRunner().Run(context.Background(), nodes, catalog.New(nil), hooks.RunInfo{})
	var cycErr *errs.CyclicGraphError
	require.ErrorAs(t, err, &cycErr)
}

func TestSequentialRunner_WrongArity(t *testing.T) {
	nodes := []*node.Node{
		node.MustNew("a", func(context.Context, []any) ([]any, error) { return nil, nil }, []string{"seed"}, []string{"x"}),
	}
	cat := catalog.New(nil)
	require.NoError(t, cat.Save(context.Background(), "seed", 1))

	_, err := NewSequentialRunner(WithAsyncIO(true)).Run(context.Background(), nodes, cat, hooks.RunInfo{})
	var nodeErr *errs.NodeExecutionError
	require.ErrorAs(t, err, &nodeErr)
	assert.ErrorContains(t, err, "returned 0 values for 1 declared outputs")
}
