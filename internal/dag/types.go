package dag

import "sync"

// Graph is a collection of vertices and their dependencies, representing a
// DAG. Vertices remember their insertion order, which every query uses as the
// deterministic tie-breaker. All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map and the order slice.
	mutex sync.RWMutex
	// nodes stores all vertices, keyed by their unique ID.
	nodes map[string]*node
	// order holds vertex IDs in insertion order.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	// id is the unique identifier for the vertex.
	id string
	// index is the insertion position of the vertex.
	index int
	// deps holds the set of vertices that this vertex depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of vertices that depend on this vertex (successors).
	dependents map[string]*node
}
