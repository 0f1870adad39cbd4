package types

import (
	"errors"
	"time"
)

// Validation errors shared by entity and relation constructors.
var (
	ErrEmptyName          = errors.New("entity name cannot be empty")
	ErrEmptyRelationType  = errors.New("relation type cannot be empty")
	ErrSelfRelation       = errors.New("relation endpoints cannot be equal")
	ErrInvalidWindow      = errors.New("validFrom must not be after validTo")
	ErrValueOutOfRange    = errors.New("value must be between 0 and 1")
	ErrMissingEndpoint    = errors.New("relation must reference existing entities")
	ErrDuplicateRelation  = errors.New("a live relation with the same (from, to, type) already exists")
	ErrUnsupportedByStore = errors.New("operation not supported by this storage provider")
)

// Entity is a node in the knowledge graph. Name is the globally unique
// identifier; Version increases strictly on each mutation.
type Entity struct {
	Name         string     `json:"name"`
	EntityType   string     `json:"entityType"`
	Observations []string   `json:"observations"`
	Embedding    []float32  `json:"embedding,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Version      int64      `json:"version"`
	ValidFrom    *time.Time `json:"validFrom,omitempty"`
	ValidTo      *time.Time `json:"validTo,omitempty"`
	ChangedBy    string     `json:"changedBy,omitempty"`
}

// Validate checks the entity invariants that can be verified in isolation.
// Global name uniqueness is enforced by the storage provider.
func (e *Entity) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.ValidFrom != nil && e.ValidTo != nil && e.ValidFrom.After(*e.ValidTo) {
		return ErrInvalidWindow
	}
	return nil
}

// LastModified returns UpdatedAt, falling back to CreatedAt when the entity
// has never been updated.
func (e *Entity) LastModified() time.Time {
	if !e.UpdatedAt.IsZero() {
		return e.UpdatedAt
	}
	return e.CreatedAt
}

// Graph is a full snapshot of entities and relations, used by bulk load and
// temporal ("graph at time T") operations.
type Graph struct {
	Entities  []*Entity   `json:"entities"`
	Relations []*Relation `json:"relations"`
}
