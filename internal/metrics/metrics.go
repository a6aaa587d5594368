package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for fetches, analyses and recommendations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchTotal      *prometheus.CounterVec // labels: source, status
	FetchDuration   *prometheus.HistogramVec
	BarsIngested    *prometheus.CounterVec // labels: symbol
	AnalysesTotal   *prometheus.CounterVec // labels: symbol, status
	LastRSI         *prometheus.GaugeVec   // labels: symbol
	Recommendations *prometheus.CounterVec // labels: mode

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketlens_fetch_total",
			Help: "Upstream price fetches by source and outcome",
		}, []string{"source", "status"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketlens_fetch_duration_seconds",
			Help:    "Upstream price fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		BarsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketlens_bars_ingested_total",
			Help: "Validated bars accepted by ingestion",
		}, []string{"symbol"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketlens_analyses_total",
			Help: "Symbol analyses by outcome",
		}, []string{"symbol", "status"}),
		LastRSI: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "marketlens_last_rsi",
			Help: "Most recent RSI per symbol",
		}, []string{"symbol"}),
		Recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketlens_recommendations_total",
			Help: "Recommendation queries by mode",
		}, []string{"mode"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.FetchTotal, m.FetchDuration, m.BarsIngested,
		m.AnalysesTotal, m.LastRSI, m.Recommendations,
	)
	return m
}

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(source string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FetchTotal.WithLabelValues(source, status).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveBars records accepted bars for a symbol.
func (m *Metrics) ObserveBars(symbol string, n int) {
	if m == nil {
		return
	}
	m.BarsIngested.WithLabelValues(symbol).Add(float64(n))
}

// ObserveAnalysis records an analysis outcome and, on success, the latest RSI.
func (m *Metrics) ObserveAnalysis(symbol string, err error, rsi float64, rsiValid bool) {
	if m == nil {
		return
	}
	if err != nil {
		m.AnalysesTotal.WithLabelValues(symbol, "error").Inc()
		return
	}
	m.AnalysesTotal.WithLabelValues(symbol, "ok").Inc()
	if rsiValid {
		m.LastRSI.WithLabelValues(symbol).Set(rsi)
	}
}

// ObserveRecommendation counts a recommendation query.
func (m *Metrics) ObserveRecommendation(mode string) {
	if m == nil {
		return
	}
	m.Recommendations.WithLabelValues(mode).Inc()
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
