package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

func newGraphOnlyService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(ServiceConfig{Storage: seedStore(t)})
	require.NoError(t, err)
	return s
}

func TestServiceGraphOnlyRegistry(t *testing.T) {
	s := newGraphOnlyService(t)

	assert.Equal(t, []string{StrategyGraph}, s.AvailableStrategies())
	assert.True(t, s.IsStrategyAvailable(StrategyGraph))
	assert.False(t, s.IsStrategyAvailable(StrategyVector))
	assert.Equal(t, StrategyGraph, s.DefaultStrategy())

	_, ok := s.HybridConfig()
	assert.False(t, ok)

	_, err := s.UpdateHybridConfig(HybridConfigPatch{})
	var unavailable *types.StrategyUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestServiceUnknownStrategyFallsBack(t *testing.T) {
	s := newGraphOnlyService(t)
	ctx := context.Background()

	viaDefault, err := s.Search(ctx, "golang", nil)
	require.NoError(t, err)

	viaUnknown, err := s.SearchWithStrategy(ctx, "golang", "nonexistent", nil)
	require.NoError(t, err)
	assert.Equal(t, viaDefault, viaUnknown)
}

func TestServiceUnavailableDefaultDowngrades(t *testing.T) {
	s, err := NewService(ServiceConfig{
		Storage:         seedStore(t),
		DefaultStrategy: StrategyHybrid, // unavailable without vector deps
	})
	require.NoError(t, err)
	assert.Equal(t, StrategyGraph, s.DefaultStrategy())
}

func TestServiceOptionPrePass(t *testing.T) {
	opts := normalizeOptions(&types.SearchOptions{
		EntityTypes: []string{" language ", "language", "", "project"},
	})
	assert.Equal(t, []string{"language", "project"}, opts.EntityTypes)
	assert.Equal(t, types.DefaultSearchLimit, opts.Limit)

	defaulted := normalizeOptions(nil)
	assert.Equal(t, types.DefaultSearchLimit, defaulted.Limit)
}

// captureRecorder counts recorder calls so tests can assert the service
// reports timing to an injected recorder, not only the global one.
type captureRecorder struct {
	searchTotal   int
	lastStrategy  string
	lastSuccess   bool
	observedCalls int
}

func (r *captureRecorder) IncSearchTotal(strategy string, success bool) {
	r.searchTotal++
	r.lastStrategy = strategy
	r.lastSuccess = success
}

func (r *captureRecorder) ObserveSearchSeconds(string, bool, float64) { r.observedCalls++ }
func (r *captureRecorder) IncPathTotal(string, bool)                  {}
func (r *captureRecorder) ObservePathSeconds(string, bool, float64)   {}
func (r *captureRecorder) IncAnalyticsTotal(bool)                     {}
func (r *captureRecorder) ObserveAnalyticsSeconds(bool, float64)      {}

func TestServiceUsesInjectedRecorder(t *testing.T) {
	rec := &captureRecorder{}
	s, err := NewService(ServiceConfig{Storage: seedStore(t), Recorder: rec})
	require.NoError(t, err)

	_, err = s.Search(context.Background(), "golang", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.searchTotal)
	assert.Equal(t, 1, rec.observedCalls)
	assert.Equal(t, StrategyGraph, rec.lastStrategy)
	assert.True(t, rec.lastSuccess)
}
