// Package vector stores entity embeddings and answers nearest-neighbor
// queries over them.
//
// The Store interface keeps embedding persistence separate from graph
// storage so that graph backends without native vector support still get
// semantic search. The Badger-backed implementation scans all vectors
// with cosine similarity; at knowledge-graph scale (thousands of
// entities) a linear scan outperforms index maintenance.
package vector
