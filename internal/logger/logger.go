// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the application logger. Logs go to stderr so the console
// report on stdout stays machine readable.
func NewLogger(logLevel, environment string) *logrus.Logger {
	return NewLoggerWithOutput(os.Stderr, logLevel, environment)
}

// NewLoggerWithOutput creates a logger writing to out
func NewLoggerWithOutput(out io.Writer, logLevel, environment string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Warnf("Invalid log level %q, using info", logLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
		return log
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
