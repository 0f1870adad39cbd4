package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	searchTotal      *prom.CounterVec
	searchSeconds    *prom.HistogramVec
	pathTotal        *prom.CounterVec
	pathSeconds      *prom.HistogramVec
	analyticsTotal   *prom.CounterVec
	analyticsSeconds *prom.HistogramVec
}

func (p *promRecorder) IncSearchTotal(strategy string, success bool) {
	p.searchTotal.WithLabelValues(strategy, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveSearchSeconds(strategy string, success bool, seconds float64) {
	p.searchSeconds.WithLabelValues(strategy, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncPathTotal(algorithm string, success bool) {
	p.pathTotal.WithLabelValues(algorithm, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObservePathSeconds(algorithm string, success bool, seconds float64) {
	p.pathSeconds.WithLabelValues(algorithm, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncAnalyticsTotal(success bool) {
	p.analyticsTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveAnalyticsSeconds(success bool, seconds float64) {
	p.analyticsSeconds.WithLabelValues(strconv.FormatBool(success)).Observe(seconds)
}

// EnablePrometheus installs a Prometheus recorder as the global default and
// returns the scrape handler for mounting on the HTTP server.
func EnablePrometheus() http.Handler {
	registry := prom.NewRegistry()
	p := &promRecorder{
		searchTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "memento_search_total",
			Help: "Total number of search requests",
		}, []string{"strategy", "success"}),
		searchSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "memento_search_seconds",
			Help:    "Search request duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"strategy", "success"}),
		pathTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "memento_path_total",
			Help: "Total number of path-finding requests",
		}, []string{"algorithm", "success"}),
		pathSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "memento_path_seconds",
			Help:    "Path-finding request duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"algorithm", "success"}),
		analyticsTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "memento_analytics_total",
			Help: "Total number of node analytics requests",
		}, []string{"success"}),
		analyticsSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "memento_analytics_seconds",
			Help:    "Node analytics request duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"success"}),
	}
	registry.MustRegister(
		p.searchTotal, p.searchSeconds,
		p.pathTotal, p.pathSeconds,
		p.analyticsTotal, p.analyticsSeconds,
	)
	SetRecorder(p)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
