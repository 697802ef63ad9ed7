// Package logger provides backtest-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for backtest runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// WithRun scopes the logger to a single run.
func (bl *BacktestLogger) WithRun(runID string) *BacktestLogger {
	return &BacktestLogger{Entry: bl.WithField("run_id", runID)}
}

// LogRoundSkipped logs a round that was skipped for lack of data.
func (bl *BacktestLogger) LogRoundSkipped(roundID int, reason string) {
	bl.WithFields(logrus.Fields{
		"round_id":   roundID,
		"event_type": "round_skipped",
		"reason":     reason,
	}).Info("Round skipped")
}

// LogDuplicatePredictions logs predictions dropped because their key was already seen.
func (bl *BacktestLogger) LogDuplicatePredictions(roundID, dropped int) {
	bl.WithFields(logrus.Fields{
		"round_id":   roundID,
		"event_type": "data_quality_anomaly",
		"anomaly":    "duplicate_prediction",
		"dropped":    dropped,
	}).Warn("Duplicate predictions dropped")
}

// LogWinnerAnomaly logs an arena that reported more than one winner.
func (bl *BacktestLogger) LogWinnerAnomaly(roundID, arenaID int, reported []int, selected int) {
	bl.WithFields(logrus.Fields{
		"round_id":         roundID,
		"arena_id":         arenaID,
		"event_type":       "data_quality_anomaly",
		"anomaly":          "multiple_winners",
		"reported_winners": reported,
		"selected_winner":  selected,
	}).Warn("Multiple winners reported for arena, using first reported")
}

// LogUnderfilledSeries logs a series that could not reach the minimum bet count.
func (bl *BacktestLogger) LogUnderfilledSeries(roundID int, strategyName string, bets, required int) {
	bl.WithFields(logrus.Fields{
		"round_id":      roundID,
		"strategy_name": strategyName,
		"event_type":    "underfilled_series",
		"bets":          bets,
		"required":      required,
	}).Warn("Bet series underfilled")
}

// LogRoundCompleted logs the settlement of a round.
func (bl *BacktestLogger) LogRoundCompleted(roundID, arenas, strategies int, netProfit float64, duration time.Duration) {
	bl.WithFields(logrus.Fields{
		"round_id":    roundID,
		"arenas":      arenas,
		"strategies":  strategies,
		"net_profit":  netProfit,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Round completed")
}

// LogRunSummary logs the totals of a finished run.
func (bl *BacktestLogger) LogRunSummary(processed, skipped, anomalies int, topStrategy string, duration time.Duration) {
	bl.WithFields(logrus.Fields{
		"rounds_processed": processed,
		"rounds_skipped":   skipped,
		"anomalies":        anomalies,
		"top_strategy":     topStrategy,
		"duration_ms":      duration.Milliseconds(),
	}).Info("Backtest run completed")
}
