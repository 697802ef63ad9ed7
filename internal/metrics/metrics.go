// Package metrics provides the centralized Prometheus metrics registry for the backtester.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arena_bets"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RoundsProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_processed_total",
		Help:      "Total number of rounds settled by the backtest engine",
	})
	RoundsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_skipped_total",
		Help:      "Total number of rounds skipped by reason",
	}, []string{"reason"})
	WinnerAnomaliesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "winner_anomalies_total",
		Help:      "Total number of arenas reporting more than one winner",
	})
	UnderfilledSeriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "underfilled_series_total",
		Help:      "Total number of bet series below the minimum bet count",
	}, []string{"strategy"})
	DataSourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datasource_requests_total",
		Help:      "Total number of data source requests by resource and status",
	}, []string{"resource", "status"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of data source circuit breaker trips",
	})
)

// Histogram metrics
var (
	SeriesGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "series_generation_duration_seconds",
		Help:      "Time taken to assemble a bet series",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"strategy"})
	SeriesSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "series_size",
		Help:      "Number of bets in assembled series",
		Buckets:   prometheus.LinearBuckets(0, 2, 8),
	}, []string{"strategy"})
)

// RecordRoundProcessed increments the settled round counter.
func RecordRoundProcessed() {
	RoundsProcessedTotal.Inc()
}

// RecordRoundSkipped increments the skipped round counter.
func RecordRoundSkipped(reason string) {
	RoundsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordWinnerAnomaly increments the winner anomaly counter.
func RecordWinnerAnomaly() {
	WinnerAnomaliesTotal.Inc()
}

// RecordSeries records the generation time and size of a series.
func RecordSeries(strategy string, bets int, durationSeconds float64, underfilled bool) {
	SeriesGenerationDuration.WithLabelValues(strategy).Observe(durationSeconds)
	SeriesSize.WithLabelValues(strategy).Observe(float64(bets))
	if underfilled {
		UnderfilledSeriesTotal.WithLabelValues(strategy).Inc()
	}
}

// RecordDataSourceRequest records a data source call outcome.
// status should be one of: "success", "not_found", "failure"
func RecordDataSourceRequest(resource, status string) {
	DataSourceRequestsTotal.WithLabelValues(resource, status).Inc()
}

// RecordCircuitBreakerTrip increments the circuit breaker counter.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// InitRegistry initializes and returns the global Prometheus registry
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RoundsProcessedTotal)
		registry.MustRegister(RoundsSkippedTotal)
		registry.MustRegister(WinnerAnomaliesTotal)
		registry.MustRegister(UnderfilledSeriesTotal)
		registry.MustRegister(DataSourceRequestsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(SeriesGenerationDuration)
		registry.MustRegister(SeriesSize)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(StrategyRiskAdjustedScore)
		registry.MustRegister(StrategyROI)
		registry.MustRegister(PredictionCacheHitRatio)
	})
	return registry
}

// GetRegistry returns the global registry, initializing it if needed
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns an HTTP handler for the metrics endpoint
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
