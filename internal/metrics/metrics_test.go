package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordRoundCounters(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(RoundsProcessedTotal)
	RecordRoundProcessed()
	assert.Equal(t, before+1, testutil.ToFloat64(RoundsProcessedTotal))

	skipped := testutil.ToFloat64(RoundsSkippedTotal.WithLabelValues("no_predictions"))
	RecordRoundSkipped("no_predictions")
	assert.Equal(t, skipped+1, testutil.ToFloat64(RoundsSkippedTotal.WithLabelValues("no_predictions")))
}

func TestRecordSeries(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(UnderfilledSeriesTotal.WithLabelValues("HighRisk"))
	assert.NotPanics(t, func() {
		RecordSeries("HighRisk", 4, 0.002, true)
		RecordSeries("HighRisk", 10, 0.001, false)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(UnderfilledSeriesTotal.WithLabelValues("HighRisk")))
}

func TestUpdateStrategyScores(t *testing.T) {
	InitRegistry()

	UpdateStrategyScores("Balanced", 0.75, 0.12)

	assert.Equal(t, 0.75, testutil.ToFloat64(StrategyRiskAdjustedScore.WithLabelValues("Balanced")))
	assert.Equal(t, 0.12, testutil.ToFloat64(StrategyROI.WithLabelValues("Balanced")))
}

func TestHandlerServesNamespace(t *testing.T) {
	InitRegistry()
	RecordWinnerAnomaly()
	RecordBacktestRun("manual", "success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "arena_bets_winner_anomalies_total"))
	assert.True(t, strings.Contains(body, "arena_bets_backtest_runs_total"))
}
