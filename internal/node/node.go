package node

import (
	"context"
	"slices"
	"sort"

	"github.com/vk/fusegrid/internal/errs"
)

// Func is the computation carried by a node. It receives one value per
// declared input, in declaration order, and must return one value per
// declared output.
type Func func(ctx context.Context, inputs []any) ([]any, error)

// Node is a single atomic computation in a pipeline. It is immutable once
// constructed; accessors hand out copies.
type Node struct {
	// name is the unique identifier of the node within a pipeline.
	name string
	// inputs and outputs are artifact keys in declaration order.
	inputs  []string
	outputs []string
	// tags is kept sorted and free of duplicates.
	tags []string
	// resourceClass is the optional machine binding; "" means unset.
	resourceClass string
	fn            Func
}

// Option customizes a node at construction time.
type Option func(*Node)

// WithTags attaches tags to the node.
func WithTags(tags ...string) Option {
	return func(n *Node) {
		n.tags = append(n.tags, tags...)
	}
}

// WithResourceClass binds the node to a named resource class.
func WithResourceClass(class string) Option {
	return func(n *Node) {
		n.resourceClass = class
	}
}

// New validates and builds a node.
func New(name string, fn Func, inputs, outputs []string, opts ...Option) (*Node, error) {
	if name == "" {
		return nil, errs.Configf("node name is required")
	}
	n := &Node{
		name:    name,
		inputs:  slices.Clone(inputs),
		outputs: slices.Clone(outputs),
		fn:      fn,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.tags = normalizeTags(n.tags)

	seen := make(map[string]struct{}, len(n.outputs))
	for _, out := range n.outputs {
		if out == "" {
			return nil, errs.Configf("node %q declares an empty output", name)
		}
		if _, dup := seen[out]; dup {
			return nil, errs.Configf("node %q declares output %q more than once", name, out)
		}
		seen[out] = struct{}{}
	}
	for _, in := range n.inputs {
		if in == "" {
			return nil, errs.Configf("node %q declares an empty input", name)
		}
		if _, self := seen[in]; self {
			return nil, errs.Configf("node %q consumes its own output %q", name, in)
		}
	}
	return n, nil
}

// MustNew is New for statically known nodes; it panics on error.
func MustNew(name string, fn Func, inputs, outputs []string, opts ...Option) *Node {
	n, err := New(name, fn, inputs, outputs, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Node) Name() string          { return n.name }
func (n *Node) Inputs() []string      { return slices.Clone(n.inputs) }
func (n *Node) Outputs() []string     { return slices.Clone(n.outputs) }
func (n *Node) Tags() []string        { return slices.Clone(n.tags) }
func (n *Node) ResourceClass() string { return n.resourceClass }
func (n *Node) Func() Func            { return n.fn }

// HasTag reports whether the node carries tag.
func (n *Node) HasTag(tag string) bool {
	_, found := slices.BinarySearch(n.tags, tag)
	return found
}

// Clone returns a copy of the node. Every field is copied explicitly so that
// no attribute is lost when pipelines are sliced or filtered.
func (n *Node) Clone() *Node {
	return &Node{
		name:          n.name,
		inputs:        slices.Clone(n.inputs),
		outputs:       slices.Clone(n.outputs),
		tags:          slices.Clone(n.tags),
		resourceClass: n.resourceClass,
		fn:            n.fn,
	}
}

// Run invokes the node's computation and checks the arity of its result.
func (n *Node) Run(ctx context.Context, inputs []any) ([]any, error) {
	if n.fn == nil {
		return nil, errs.Configf("node %q has no function bound", n.name)
	}
	outputs, err := n.fn(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(outputs) != len(n.outputs) {
		return nil, errs.Configf("node %q returned %d values for %d declared outputs", n.name, len(outputs), len(n.outputs))
	}
	return outputs, nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := slices.Clone(tags)
	sort.Strings(out)
	return slices.Compact(out)
}
