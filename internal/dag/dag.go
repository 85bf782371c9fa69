package dag

import (
	"fmt"
	"slices"
	"sort"

	"github.com/vk/fusegrid/internal/errs"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new vertex with the given ID to the graph. If a vertex with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		index:      len(g.order),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` vertex to the `toID`
// vertex, meaning `toID` depends on `fromID`. An error is returned if either
// vertex does not exist or if the edge would be a self-reference. Adding an
// existing edge again is a no-op.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.order)
}

// Nodes returns all vertex IDs in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.order)
}

// Dependencies returns the IDs the given vertex depends on, in insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return byInsertion(n.deps), nil
}

// Dependents returns the IDs that depend on the given vertex, in insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return byInsertion(n.dependents), nil
}

// Levels partitions the graph greedily, Kahn style: level 0 holds every vertex
// without dependencies, and each following level holds every vertex whose
// dependencies all lie in earlier levels. Vertices keep insertion order
// within a level. If vertices remain but none can be unblocked, a
// *errs.CyclicGraphError is returned instead of looping.
func (g *Graph) Levels() ([][]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	indeg := make(map[string]int, len(g.nodes))
	for _, id := range g.order {
		indeg[id] = len(g.nodes[id].deps)
	}

	var current []string
	for _, id := range g.order {
		if indeg[id] == 0 {
			current = append(current, id)
		}
	}

	var levels [][]string
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		var next []*node
		for _, id := range current {
			for _, dep := range g.nodes[id].dependents {
				indeg[dep.id]--
				if indeg[dep.id] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return next[i].index < next[j].index })
		current = make([]string, 0, len(next))
		for _, n := range next {
			current = append(current, n.id)
		}
	}

	if placed < len(g.order) {
		var remaining []string
		for _, id := range g.order {
			if indeg[id] > 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &errs.CyclicGraphError{Remaining: remaining, Cycle: g.findCycle()}
	}
	return levels, nil
}

// TopologicalOrder flattens Levels into a single ordering.
func (g *Graph) TopologicalOrder() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, g.Len())
	for _, level := range levels {
		out = append(out, level...)
	}
	return out, nil
}

// DetectCycles checks the graph for any cycles. It returns a
// *errs.CyclicGraphError carrying one cycle path if a cycle is found.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if cycle := g.findCycle(); cycle != nil {
		return &errs.CyclicGraphError{Cycle: cycle}
	}
	return nil
}

// findCycle runs a depth-first search in insertion order and returns the
// first cycle found as a closed path, or nil. The caller must hold the lock.
func (g *Graph) findCycle() []string {
	// permanent: vertices fully visited and known not to be on a cycle.
	// stack: vertices on the current recursion path, in order.
	permanent := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(n *node) []string
	visit = func(n *node) []string {
		if permanent[n.id] {
			return nil
		}
		if onStack[n.id] {
			start := slices.Index(stack, n.id)
			return append(slices.Clone(stack[start:]), n.id)
		}

		onStack[n.id] = true
		stack = append(stack, n.id)
		for _, depID := range byInsertion(n.dependents) {
			if cycle := visit(g.nodes[depID]); cycle != nil {
				return cycle
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if cycle := visit(g.nodes[id]); cycle != nil {
			return cycle
		}
	}
	return nil
}

func byInsertion(set map[string]*node) []string {
	nodes := make([]*node, 0, len(set))
	for _, n := range set {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].index < nodes[j].index })
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids
}
