// Package storage defines the StorageProvider contract the query engine
// reads the graph through, split into focused interfaces so consumers can
// depend on the smallest one that meets their needs. Optional features
// (temporal queries, decayed views, semantic search) are announced through
// a typed capability set determined once at construction instead of
// per-call method probing.
//
// Two implementations ship with the module: a Neo4j-backed provider and a
// deterministic in-memory provider used by tests and demos.
package storage
