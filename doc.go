// Package memento is the query and analytics engine of a knowledge-graph
// memory service.
//
// Entities and typed relations live in a pluggable storage backend;
// embeddings live in a vector store. On top of those, this package wires
// together multi-strategy search (lexical graph matching, vector
// similarity, and their weighted hybrid fusion), multi-algorithm path
// finding between entities, per-node analytics, and a shared time-based
// confidence decay model that keeps ranking and path weighting in
// agreement about how much a relation is still trusted.
//
// The Engine interface is the surface consumed by protocol layers (REST,
// MCP); NewClient builds the default implementation from a storage
// provider plus optional vector search dependencies.
package memento
