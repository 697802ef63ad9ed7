package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DataSourceLogger logs calls to external prediction and outcome sources.
type DataSourceLogger struct {
	*logrus.Entry
}

// NewDataSourceLogger creates a new data source logger.
func NewDataSourceLogger(baseLogger *logrus.Logger, source string) *DataSourceLogger {
	return &DataSourceLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "datasource",
			"source":    source,
		}),
	}
}

// LogFetch logs a completed fetch.
func (dl *DataSourceLogger) LogFetch(resource string, roundID, records int, duration time.Duration) {
	dl.WithFields(logrus.Fields{
		"resource":    resource,
		"round_id":    roundID,
		"records":     records,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Fetched round data")
}

// LogFetchFailed logs a failed fetch.
func (dl *DataSourceLogger) LogFetchFailed(resource string, roundID int, err error) {
	dl.WithFields(logrus.Fields{
		"resource": resource,
		"round_id": roundID,
	}).WithError(err).Error("Failed to fetch round data")
}

// LogCircuitOpen logs the circuit breaker opening after repeated failures.
func (dl *DataSourceLogger) LogCircuitOpen(failures int, cooldown time.Duration) {
	dl.WithFields(logrus.Fields{
		"failures":    failures,
		"cooldown_ms": cooldown.Milliseconds(),
	}).Warn("Circuit breaker opened")
}

// LogCacheStats logs cache hit and miss counts.
func (dl *DataSourceLogger) LogCacheStats(hits, misses int64, items int) {
	dl.WithFields(logrus.Fields{
		"cache_hits":   hits,
		"cache_misses": misses,
		"cache_items":  items,
	}).Debug("Prediction cache stats")
}
