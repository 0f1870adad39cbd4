// Package metrics provides a minimal instrumentation surface with a no-op
// default and an optional Prometheus-backed recorder.
package metrics

import (
	"sync"
	"time"
)

// Recorder is the metrics surface used by the query engine.
type Recorder interface {
	IncSearchTotal(strategy string, success bool)
	ObserveSearchSeconds(strategy string, success bool, seconds float64)
	IncPathTotal(algorithm string, success bool)
	ObservePathSeconds(algorithm string, success bool, seconds float64)
	IncAnalyticsTotal(success bool)
	ObserveAnalyticsSeconds(success bool, seconds float64)
}

type noopRecorder struct{}

func (noopRecorder) IncSearchTotal(string, bool)                  {}
func (noopRecorder) ObserveSearchSeconds(string, bool, float64)   {}
func (noopRecorder) IncPathTotal(string, bool)                    {}
func (noopRecorder) ObservePathSeconds(string, bool, float64)     {}
func (noopRecorder) IncAnalyticsTotal(bool)                       {}
func (noopRecorder) ObserveAnalyticsSeconds(bool, float64)        {}

// Nop returns a recorder that discards everything.
func Nop() Recorder { return noopRecorder{} }

var (
	recMu    sync.RWMutex
	recorder Recorder = noopRecorder{}
)

// Default returns the current global recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	recorder = r
}

// TimeSearch times a search call against the global recorder.
func TimeSearch(strategy string) func(success bool) {
	return TimeSearchWith(Default(), strategy)
}

// TimeSearchWith times a search call against a specific recorder.
func TimeSearchWith(r Recorder, strategy string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		r.IncSearchTotal(strategy, success)
		r.ObserveSearchSeconds(strategy, success, dur)
	}
}

// TimePath times a path-finding call against the global recorder.
func TimePath(algorithm string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncPathTotal(algorithm, success)
		Default().ObservePathSeconds(algorithm, success, dur)
	}
}

// TimeAnalytics times a node analytics call against the global recorder.
func TimeAnalytics() func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncAnalyticsTotal(success)
		Default().ObserveAnalyticsSeconds(success, dur)
	}
}
