package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by trigger and status",
	}, []string{"trigger", "status"})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of full backtest runs",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// Backtest gauge vectors
var (
	StrategyRiskAdjustedScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "strategy_risk_adjusted_score",
		Help:      "Risk-adjusted score of each strategy in the latest run",
	}, []string{"strategy"})
	StrategyROI = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "strategy_roi",
		Help:      "ROI of each strategy in the latest run",
	}, []string{"strategy"})
	PredictionCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "prediction_cache_hit_ratio",
		Help:      "Hit ratio of the prediction cache",
	})
)

// RecordBacktestRun records a backtest run event.
// trigger should be one of: "manual", "scheduled"
// status should be one of: "success", "failure", "cancelled"
func RecordBacktestRun(trigger, status string) {
	BacktestRunsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordBacktestDuration records the duration of a run.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}

// UpdateStrategyScores publishes the latest per-strategy scores.
func UpdateStrategyScores(strategy string, riskAdjusted, roi float64) {
	StrategyRiskAdjustedScore.WithLabelValues(strategy).Set(riskAdjusted)
	StrategyROI.WithLabelValues(strategy).Set(roi)
}

// UpdateCacheHitRatio publishes the prediction cache hit ratio.
func UpdateCacheHitRatio(ratio float64) {
	PredictionCacheHitRatio.Set(ratio)
}
