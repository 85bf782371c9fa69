// Package dag is a small, generic directed acyclic graph keyed by string IDs.
// It stores vertices in insertion order so that every query (dependencies,
// dependents, levels) is deterministic, and it levels the graph greedily so
// callers can walk it in dependency order.
//
// The pipeline package builds one Graph per pipeline from artifact
// producer/consumer relationships; the runner builds one per flattened run.
package dag
