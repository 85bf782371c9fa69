// Package fusion wraps an ordered run of nodes into a single opaque execution
// unit. To the rest of the pipeline a Group behaves exactly like one node
// whose inputs are ExternalInputs and whose outputs are ProducedArtifacts.
//
// The member order is trusted: it must already be a valid topological order
// of the members' own artifact dependencies. The Group never reorders.
package fusion

import (
	"slices"
	"sort"

	"github.com/vk/fusegrid/internal/artifact"
	"github.com/vk/fusegrid/internal/errs"
	"github.com/vk/fusegrid/internal/node"
)

// Group is a fused unit. It exclusively owns deep copies of its members.
type Group struct {
	name          string
	members       []*node.Node
	resourceClass string
	// declared holds author-declared external outputs; nil means derive them.
	declared []string
}

// Option customizes a group at construction time.
type Option func(*Group)

// WithResourceClass binds the whole group to a resource class.
func WithResourceClass(class string) Option {
	return func(g *Group) {
		g.resourceClass = class
	}
}

// WithOutputs declares the artifacts the group promises to expose.
func WithOutputs(outputs ...string) Option {
	return func(g *Group) {
		g.declared = slices.Clone(outputs)
	}
}

// New builds a group from members in the given order.
func New(name string, members []*node.Node, opts ...Option) (*Group, error) {
	if name == "" {
		return nil, errs.Configf("group name is required")
	}
	if len(members) == 0 {
		return nil, errs.Configf("group %q has no members", name)
	}

	g := &Group{name: name, members: make([]*node.Node, 0, len(members))}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == nil {
			return nil, errs.Configf("group %q has a nil member", name)
		}
		if _, dup := seen[m.Name()]; dup {
			return nil, errs.Configf("group %q lists member %q more than once", name, m.Name())
		}
		seen[m.Name()] = struct{}{}
		g.members = append(g.members, m.Clone())
	}
	for _, opt := range opts {
		opt(g)
	}

	produced := make(map[string]struct{})
	for _, out := range g.ProducedArtifacts() {
		produced[out] = struct{}{}
	}
	for _, out := range g.declared {
		if _, ok := produced[out]; !ok {
			return nil, errs.Configf("group %q declares output %q that no member produces", name, out)
		}
	}
	return g, nil
}

func (g *Group) Name() string          { return g.name }
func (g *Group) ResourceClass() string { return g.resourceClass }

// Members returns copies of the member nodes in their original order.
func (g *Group) Members() []*node.Node {
	out := make([]*node.Node, len(g.members))
	for i, m := range g.members {
		out[i] = m.Clone()
	}
	return out
}

// MemberNames returns member names in order.
func (g *Group) MemberNames() []string {
	out := make([]string, len(g.members))
	for i, m := range g.members {
		out[i] = m.Name()
	}
	return out
}

// ExternalInputs returns the artifacts read by any member that are not
// produced by an earlier member, in order of first appearance. Matching is on
// base keys; parameters are always external.
func (g *Group) ExternalInputs() []string {
	producedSoFar := make(map[string]struct{})
	seen := make(map[string]struct{})
	var out []string
	for _, m := range g.members {
		for _, in := range m.Inputs() {
			if !artifact.IsParameter(in) {
				if _, internal := producedSoFar[artifact.Base(in)]; internal {
					continue
				}
			}
			if _, dup := seen[in]; dup {
				continue
			}
			seen[in] = struct{}{}
			out = append(out, in)
		}
		for _, o := range m.Outputs() {
			producedSoFar[artifact.Base(o)] = struct{}{}
		}
	}
	return out
}

// ProducedArtifacts returns the union of member outputs in order of first
// appearance.
func (g *Group) ProducedArtifacts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range g.members {
		for _, o := range m.Outputs() {
			if _, dup := seen[o]; dup {
				continue
			}
			seen[o] = struct{}{}
			out = append(out, o)
		}
	}
	return out
}

// ExternalOutputs returns the declared outputs, or, when none were declared,
// the produced artifacts no member consumes.
func (g *Group) ExternalOutputs() []string {
	if g.declared != nil {
		return slices.Clone(g.declared)
	}
	consumed := make(map[string]struct{})
	for _, m := range g.members {
		for _, in := range artifact.BaseSet(m.Inputs()) {
			consumed[in] = struct{}{}
		}
	}
	var out []string
	for _, o := range g.ProducedArtifacts() {
		if _, internal := consumed[artifact.Base(o)]; !internal {
			out = append(out, o)
		}
	}
	return out
}

// Tags returns the sorted union of member tags.
func (g *Group) Tags() []string {
	var out []string
	for _, m := range g.members {
		out = append(out, m.Tags()...)
	}
	sort.Strings(out)
	return slices.Compact(out)
}

// HasTag reports whether any member carries tag.
func (g *Group) HasTag(tag string) bool {
	for _, m := range g.members {
		if m.HasTag(tag) {
			return true
		}
	}
	return false
}

// Clone deep-copies the member list and keeps the resource class and the
// declared outputs.
func (g *Group) Clone() *Group {
	return &Group{
		name:          g.name,
		members:       g.Members(),
		resourceClass: g.resourceClass,
		declared:      slices.Clone(g.declared),
	}
}
