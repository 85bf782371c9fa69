package pipeline

import (
	"github.com/vk/fusegrid/internal/fusion"
	"github.com/vk/fusegrid/internal/node"
)

// Kind tells which variant an Entity holds.
type Kind int

const (
	KindNode Kind = iota
	KindGroup
)

func (k Kind) String() string {
	if k == KindGroup {
		return "group"
	}
	return "node"
}

// Entity is a top-level member of a pipeline: either a plain node or a fused
// group. Everything outside the fusion and runner packages treats both the
// same way through Inputs and Outputs.
type Entity struct {
	kind  Kind
	node  *node.Node
	group *fusion.Group
}

// NodeEntity wraps a plain node.
func NodeEntity(n *node.Node) Entity {
	return Entity{kind: KindNode, node: n}
}

// GroupEntity wraps a fused group.
func GroupEntity(g *fusion.Group) Entity {
	return Entity{kind: KindGroup, group: g}
}

func (e Entity) Kind() Kind { return e.kind }

// Node returns the wrapped node, or nil for a group.
func (e Entity) Node() *node.Node { return e.node }

// Group returns the wrapped group, or nil for a node.
func (e Entity) Group() *fusion.Group { return e.group }

func (e Entity) Name() string {
	if e.kind == KindGroup {
		return e.group.Name()
	}
	return e.node.Name()
}

// Inputs are the artifacts the entity needs from outside itself.
func (e Entity) Inputs() []string {
	if e.kind == KindGroup {
		return e.group.ExternalInputs()
	}
	return e.node.Inputs()
}

// Outputs are every artifact the entity writes, intermediate ones included.
func (e Entity) Outputs() []string {
	if e.kind == KindGroup {
		return e.group.ProducedArtifacts()
	}
	return e.node.Outputs()
}

func (e Entity) ResourceClass() string {
	if e.kind == KindGroup {
		return e.group.ResourceClass()
	}
	return e.node.ResourceClass()
}

func (e Entity) Tags() []string {
	if e.kind == KindGroup {
		return e.group.Tags()
	}
	return e.node.Tags()
}

func (e Entity) HasTag(tag string) bool {
	if e.kind == KindGroup {
		return e.group.HasTag(tag)
	}
	return e.node.HasTag(tag)
}

// NodeNames lists the names of the executable nodes behind the entity, in
// execution order.
func (e Entity) NodeNames() []string {
	if e.kind == KindGroup {
		return e.group.MemberNames()
	}
	return []string{e.node.Name()}
}

// Nodes returns copies of the executable nodes behind the entity.
func (e Entity) Nodes() []*node.Node {
	if e.kind == KindGroup {
		return e.group.Members()
	}
	return []*node.Node{e.node.Clone()}
}

// Clone deep-copies the entity.
func (e Entity) Clone() Entity {
	if e.kind == KindGroup {
		return GroupEntity(e.group.Clone())
	}
	return NodeEntity(e.node.Clone())
}
