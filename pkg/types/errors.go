package types

import "fmt"

// ValidationError reports malformed or out-of-range input. It is raised
// synchronously before any I/O and is never retried. Param and Value carry
// the offending parameter so callers can build an actionable message
// without re-deriving context.
type ValidationError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Param, e.Value, e.Reason)
}

// NewValidationError builds a ValidationError for one parameter.
func NewValidationError(param string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Param: param, Value: value, Reason: reason}
}

// NotFoundError reports that a named entity does not exist where one is
// required (path endpoints, analytics targets). It is distinct from "no
// path found", which is a normal empty result.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity %q not found", e.Entity)
}

// StrategyUnavailableError reports a search strategy name that is not
// registered. The search service logs it as a warning and downgrades to
// the default strategy; it never surfaces to callers as a failure.
type StrategyUnavailableError struct {
	Name string
}

func (e *StrategyUnavailableError) Error() string {
	return fmt.Sprintf("search strategy %q not available", e.Name)
}

// StorageError wraps a graph-store I/O failure. The query engine logs it
// and propagates it unchanged; retry policy belongs to the storage adapter.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// VectorStoreError wraps a vector-index I/O failure, propagated unchanged
// like StorageError.
type VectorStoreError struct {
	Op  string
	Err error
}

func (e *VectorStoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *VectorStoreError) Unwrap() error { return e.Err }
