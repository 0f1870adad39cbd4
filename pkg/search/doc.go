// Package search implements multi-strategy entity search over the
// knowledge graph.
//
// Three strategies are provided behind one interface: graph (lexical and
// structural matching against the storage backend), vector (embedding
// similarity against the vector store), and hybrid (weighted fusion of
// both). The Service holds a name-to-strategy registry with a
// configurable default; requesting an unknown strategy falls back to the
// default with a warning rather than failing.
package search
