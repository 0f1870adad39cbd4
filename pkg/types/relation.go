package types

import (
	"fmt"
	"time"
)

// Relation is a typed directed edge between two entities. The triple
// (From, To, RelationType) is the logical identity of a relation; no two
// live relations share it.
//
// Strength is a structural weight assigned at creation and never decays.
// Confidence is a belief level subject to time-based decay, applied at read
// time by the decay model; the persisted value is never rewritten.
type Relation struct {
	From         string                 `json:"from"`
	To           string                 `json:"to"`
	RelationType string                 `json:"relationType"`
	Strength     *float64               `json:"strength,omitempty"`
	Confidence   *float64               `json:"confidence,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
	Version      int64                  `json:"version"`
	ValidFrom    *time.Time             `json:"validFrom,omitempty"`
	ValidTo      *time.Time             `json:"validTo,omitempty"`
	ChangedBy    string                 `json:"changedBy,omitempty"`
}

// Key returns the logical identity of the relation.
func (r *Relation) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.From, r.To, r.RelationType)
}

// Validate checks the relation invariants that can be verified in
// isolation. Endpoint existence and triple uniqueness are enforced by the
// storage provider.
func (r *Relation) Validate() error {
	if r.From == "" || r.To == "" {
		return ErrEmptyName
	}
	if r.From == r.To {
		return ErrSelfRelation
	}
	if r.RelationType == "" {
		return ErrEmptyRelationType
	}
	if r.Strength != nil && (*r.Strength < 0 || *r.Strength > 1) {
		return ErrValueOutOfRange
	}
	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 1) {
		return ErrValueOutOfRange
	}
	if r.ValidFrom != nil && r.ValidTo != nil && r.ValidFrom.After(*r.ValidTo) {
		return ErrInvalidWindow
	}
	return nil
}

// BaseConfidence returns the stored confidence, defaulting to full trust
// for relations created without one.
func (r *Relation) BaseConfidence() float64 {
	if r.Confidence == nil {
		return 1.0
	}
	return *r.Confidence
}

// LastModified returns UpdatedAt, falling back to CreatedAt when the
// relation has never been updated.
func (r *Relation) LastModified() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}
