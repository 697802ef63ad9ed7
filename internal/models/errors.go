package models

import "errors"

// Backtest error taxonomy
var (
	// ErrInsufficientData marks a round with no usable predictions or outcomes; the round is skipped.
	ErrInsufficientData = errors.New("insufficient data for round")
	// ErrDataQualityAnomaly marks conflicting outcome data that was resolved deterministically.
	ErrDataQualityAnomaly = errors.New("data quality anomaly")
	// ErrUnderfilledSeries marks a series shorter than the minimum bet count.
	ErrUnderfilledSeries = errors.New("bet series underfilled")
	// ErrSourceUnavailable is fatal to a run.
	ErrSourceUnavailable = errors.New("external data source unavailable")
)

// Persistence errors
var (
	ErrStrategyNameRequired = errors.New("strategy name is required")
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateKey         = errors.New("duplicate key violation")
)
