package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/safety"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
)

var (
	// Pipeline metrics
	pipelineRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_scanner_pipeline_runs_total",
			Help: "Total number of signal pipeline runs",
		},
	)

	pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_scanner_pipeline_duration_seconds",
			Help:    "Duration of signal pipeline runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	degradedIndicators = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_scanner_degraded_indicators_total",
			Help: "Indicators that could not be computed, by name",
		},
		[]string{"indicator"},
	)

	// Screener metrics
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_scanner_scans_total",
			Help: "Total number of symbol scans by outcome",
		},
		[]string{"outcome"},
	)

	lastOverallSignal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_scanner_overall_signal",
			Help: "Latest overall signal of a symbol",
		},
		[]string{"symbol"},
	)

	// Market data metrics
	fetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_scanner_fetch_errors_total",
			Help: "Total number of market data fetch errors",
		},
		[]string{"source"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_scanner_upstream_breaker_state",
			Help: "Circuit breaker state per upstream (0 closed, 1 open, 2 half-open)",
		},
		[]string{"upstream"},
	)
)

func init() {
	prometheus.MustRegister(pipelineRuns)
	prometheus.MustRegister(pipelineDuration)
	prometheus.MustRegister(degradedIndicators)
	prometheus.MustRegister(scansTotal)
	prometheus.MustRegister(lastOverallSignal)
	prometheus.MustRegister(fetchErrors)
	prometheus.MustRegister(breakerState)
}

// Scan outcomes
const (
	ScanOK      = "ok"
	ScanSkipped = "skipped"
)

// PipelineObserver records every pipeline run. It satisfies signals.Observer.
type PipelineObserver struct{}

// NewPipelineObserver creates a new pipeline observer
func NewPipelineObserver() *PipelineObserver {
	return &PipelineObserver{}
}

// ObserveRun records the run count, its duration and the degraded indicators
func (o *PipelineObserver) ObserveRun(result *signals.Result, elapsed time.Duration) {
	pipelineRuns.Inc()
	pipelineDuration.Observe(elapsed.Seconds())
	for _, outcome := range result.Degraded() {
		degradedIndicators.WithLabelValues(outcome.Indicator).Inc()
	}
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordScan records the outcome of scanning one symbol
func RecordScan(outcome string) {
	scansTotal.WithLabelValues(outcome).Inc()
}

// UpdateOverallSignal sets the latest overall signal of symbol
func UpdateOverallSignal(symbol string, overall int) {
	lastOverallSignal.WithLabelValues(symbol).Set(float64(overall))
}

// RecordFetchError records a market data error
func RecordFetchError(source string) {
	fetchErrors.WithLabelValues(source).Inc()
}

// RecordBreakerState publishes the circuit breaker state of an upstream
func RecordBreakerState(upstream string, state safety.CircuitBreakerState) {
	breakerState.WithLabelValues(upstream).Set(float64(state))
}
