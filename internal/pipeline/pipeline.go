// Package pipeline holds an ordered set of top-level entities (nodes and fused
// groups) and derives their dependency structure from the artifacts they read
// and write. An edge runs from the producer of an artifact to every consumer
// of the same base key; parameters never create edges.
package pipeline

import (
	"fmt"
	"slices"

	"github.com/vk/fusegrid/internal/artifact"
	"github.com/vk/fusegrid/internal/dag"
	"github.com/vk/fusegrid/internal/errs"
	"github.com/vk/fusegrid/internal/node"
)

// Pipeline is immutable after New. Methods that narrow or copy it return new
// pipelines built from clones.
type Pipeline struct {
	entities []Entity
	// byName maps a top-level entity name to its position in entities.
	byName map[string]int
	// producers maps a base artifact key to the name of the entity writing it.
	producers map[string]string
}

// New validates the entities and builds a pipeline keeping their order.
//
// It rejects nil entities, duplicate top-level names, node names that
// appear more than once across all entities (group members included), and
// two entities writing the same base artifact.
func New(entities ...Entity) (*Pipeline, error) {
	p := &Pipeline{
		entities:  make([]Entity, 0, len(entities)),
		byName:    make(map[string]int, len(entities)),
		producers: make(map[string]string),
	}
	nodeOwners := make(map[string]string)

	for _, e := range entities {
		if (e.kind == KindNode && e.node == nil) || (e.kind == KindGroup && e.group == nil) {
			return nil, errs.Configf("pipeline contains an empty %s entity", e.kind)
		}
		name := e.Name()
		if _, dup := p.byName[name]; dup {
			return nil, errs.Configf("duplicate entity name %q", name)
		}
		for _, nodeName := range e.NodeNames() {
			if owner, dup := nodeOwners[nodeName]; dup {
				return nil, errs.Configf("node %q appears in both %q and %q", nodeName, owner, name)
			}
			nodeOwners[nodeName] = name
		}
		if owner, clash := nodeOwners[name]; clash && owner != name {
			return nil, errs.Configf("entity name %q is already used by a node inside %q", name, owner)
		}
		for _, out := range artifact.BaseSet(e.Outputs()) {
			if other, dup := p.producers[out]; dup && other != name {
				return nil, errs.Configf("artifact %q is produced by both %q and %q", out, other, name)
			}
			p.producers[out] = name
		}
		p.byName[name] = len(p.entities)
		p.entities = append(p.entities, e)
	}
	return p, nil
}

// FromNodes builds a pipeline of plain nodes.
func FromNodes(nodes ...*node.Node) (*Pipeline, error) {
	entities := make([]Entity, len(nodes))
	for i, n := range nodes {
		entities[i] = NodeEntity(n)
	}
	return New(entities...)
}

// Len returns the number of top-level entities.
func (p *Pipeline) Len() int { return len(p.entities) }

// Entities returns the top-level entities in insertion order.
func (p *Pipeline) Entities() []Entity { return slices.Clone(p.entities) }

// Names returns the top-level entity names in insertion order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.entities))
	for i, e := range p.entities {
		out[i] = e.Name()
	}
	return out
}

// Entity looks up a top-level entity by name.
func (p *Pipeline) Entity(name string) (Entity, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Entity{}, false
	}
	return p.entities[i], true
}

// Producer returns the name of the entity producing the base of key.
func (p *Pipeline) Producer(key string) (string, bool) {
	if artifact.IsParameter(key) {
		return "", false
	}
	name, ok := p.producers[artifact.Base(key)]
	return name, ok
}

// Graph builds the entity dependency graph. Vertices are entity names in
// insertion order; an edge a -> b means b reads an artifact a writes.
func (p *Pipeline) Graph() (*dag.Graph, error) {
	g := dag.New()
	for _, e := range p.entities {
		g.AddNode(e.Name())
	}
	for _, e := range p.entities {
		for _, in := range artifact.BaseSet(e.Inputs()) {
			producer, ok := p.producers[in]
			if !ok || producer == e.Name() {
				continue
			}
			if err := g.AddEdge(producer, e.Name()); err != nil {
				return nil, fmt.Errorf("failed to link %q to %q: %w", producer, e.Name(), err)
			}
		}
	}
	return g, nil
}

// Levels groups the entities into topological levels. Every entity in level
// k depends only on entities in earlier levels. A cycle yields a
// *errs.CyclicGraphError.
func (p *Pipeline) Levels() ([][]Entity, error) {
	g, err := p.Graph()
	if err != nil {
		return nil, err
	}
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	out := make([][]Entity, len(levels))
	for i, level := range levels {
		out[i] = make([]Entity, len(level))
		for j, name := range level {
			out[i][j] = p.entities[p.byName[name]]
		}
	}
	return out, nil
}

// Flatten replaces every group by copies of its members, keeping both the
// entity order and the member order.
func (p *Pipeline) Flatten() []*node.Node {
	var out []*node.Node
	for _, e := range p.entities {
		out = append(out, e.Nodes()...)
	}
	return out
}

// Inputs returns the free inputs of the pipeline: artifacts some entity reads
// that no entity produces, in order of first appearance. Parameters are
// always free.
func (p *Pipeline) Inputs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range p.entities {
		for _, in := range e.Inputs() {
			if _, produced := p.Producer(in); produced {
				continue
			}
			if _, dup := seen[in]; dup {
				continue
			}
			seen[in] = struct{}{}
			out = append(out, in)
		}
	}
	return out
}

// Outputs returns every artifact written by the pipeline that no node reads,
// group members included.
func (p *Pipeline) Outputs() []string {
	consumed := make(map[string]struct{})
	for _, n := range p.Flatten() {
		for _, in := range artifact.BaseSet(n.Inputs()) {
			consumed[in] = struct{}{}
		}
	}
	var out []string
	for _, e := range p.entities {
		for _, o := range e.Outputs() {
			if _, used := consumed[artifact.Base(o)]; !used {
				out = append(out, o)
			}
		}
	}
	return out
}

// Clone deep-copies the pipeline.
func (p *Pipeline) Clone() *Pipeline {
	entities := make([]Entity, len(p.entities))
	for i, e := range p.entities {
		entities[i] = e.Clone()
	}
	cp, err := New(entities...)
	if err != nil {
		// The source pipeline already passed the same validation.
		panic(fmt.Sprintf("pipeline: clone failed validation: %v", err))
	}
	return cp
}
