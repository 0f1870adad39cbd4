// Package types defines the shared data model for the knowledge-graph
// memory engine: entities, typed relations, transient query results, and
// the error taxonomy used across storage, search, path finding, and
// analytics.
//
// Entities and relations are created and mutated exclusively through a
// storage provider; the query engine only reads them. All result wrappers
// (ScoredEntity, PathResult, NodeAnalytics) are transient and never
// persisted.
package types
