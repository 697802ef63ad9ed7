package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug", "development").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("nonsense", "development").GetLevel())

	_, isJSON := NewLogger("info", "production").Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
	_, isText := NewLogger("info", "staging").Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestNewLoggerWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput(buf, "warn", "production")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.WithField("round_id", 3).Warn("kept")
	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "kept", logEntry["msg"])
	assert.Equal(t, float64(3), logEntry["round_id"])
}

func TestBacktestLoggerRoundSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	bl := NewBacktestLogger(log).WithRun("run-1")

	bl.LogRoundSkipped(42, "no predictions")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "backtest", logEntry["component"])
	assert.Equal(t, "run-1", logEntry["run_id"])
	assert.Equal(t, float64(42), logEntry["round_id"])
	assert.Equal(t, "round_skipped", logEntry["event_type"])
}

func TestBacktestLoggerWinnerAnomaly(t *testing.T) {
	log, buf := setupTestLogger()

	NewBacktestLogger(log).LogWinnerAnomaly(7, 3, []int{4, 9}, 4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "multiple_winners", logEntry["anomaly"])
	assert.Equal(t, float64(3), logEntry["arena_id"])
	assert.Equal(t, float64(4), logEntry["selected_winner"])
	assert.Equal(t, []interface{}{float64(4), float64(9)}, logEntry["reported_winners"])
}

func TestBacktestLoggerUnderfilledSeries(t *testing.T) {
	log, buf := setupTestLogger()

	NewBacktestLogger(log).LogUnderfilledSeries(5, "HighRisk", 3, 10)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "HighRisk", logEntry["strategy_name"])
	assert.Equal(t, float64(3), logEntry["bets"])
}

func TestBacktestLoggerRunSummary(t *testing.T) {
	log, buf := setupTestLogger()

	NewBacktestLogger(log).LogRunSummary(10, 2, 1, "Balanced", 1500*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "Balanced", logEntry["top_strategy"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
}

func TestDataSourceLoggerFetchFailed(t *testing.T) {
	log, buf := setupTestLogger()

	NewDataSourceLogger(log, "http").LogFetchFailed("predictions", 12, errors.New("boom"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "datasource", logEntry["component"])
	assert.Equal(t, "http", logEntry["source"])
	assert.Equal(t, "boom", logEntry["error"])
}
