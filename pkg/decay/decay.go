// Package decay implements the time-based confidence-decay model shared by
// search ranking and path weighting. Centralizing it in one injected model
// guarantees the two subsystems can never disagree on how much a relation
// is still trusted.
package decay

import (
	"math"
	"time"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// DefaultHalfLife is the period after which confidence halves when no
// half-life is configured.
const DefaultHalfLife = 30 * 24 * time.Hour

// DefaultFloor is the minimum confidence a decayed value can reach.
const DefaultFloor = 0.1

// Model computes time-adjusted confidence values. It is pure: persisted
// confidence is never mutated, the decayed view is computed at read time.
type Model struct {
	halfLife time.Duration
	floor    float64
	enabled  bool
	now      func() time.Time
}

// New returns an enabled model. Non-positive halfLife falls back to
// DefaultHalfLife; floor is clamped into [0,1].
func New(halfLife time.Duration, floor float64) *Model {
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	if floor < 0 {
		floor = 0
	}
	if floor > 1 {
		floor = 1
	}
	return &Model{halfLife: halfLife, floor: floor, enabled: true, now: time.Now}
}

// Disabled returns a model whose Confidence is the identity on base.
func Disabled() *Model {
	return &Model{halfLife: DefaultHalfLife, enabled: false, now: time.Now}
}

// WithNow overrides the reference clock. Used by tests and temporal
// ("as of T") queries.
func (m *Model) WithNow(now func() time.Time) *Model {
	out := *m
	out.now = now
	return &out
}

// Enabled reports whether decay is applied.
func (m *Model) Enabled() bool { return m.enabled }

// HalfLife returns the configured half-life.
func (m *Model) HalfLife() time.Duration { return m.halfLife }

// Confidence returns base * 2^(-age/halfLife), floored at the configured
// minimum. Negative ages (clock skew, future validFrom) are treated as
// zero. A disabled model returns base unchanged.
func (m *Model) Confidence(base float64, age time.Duration) float64 {
	if !m.enabled {
		return base
	}
	if age <= 0 {
		return base
	}
	decayed := base * math.Exp2(-float64(age)/float64(m.halfLife))
	if decayed < m.floor {
		return m.floor
	}
	return decayed
}

// RelationConfidence returns the decayed confidence of a relation, aging it
// from its last modification time. A relation without a stored confidence
// is treated as fully trusted before decay.
func (m *Model) RelationConfidence(rel *types.Relation) float64 {
	return m.Confidence(rel.BaseConfidence(), m.now().Sub(rel.LastModified()))
}
