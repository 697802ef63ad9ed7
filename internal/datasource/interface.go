package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/arena-bets/internal/models"
)

// PredictionSource supplies the per-round predictions strategies are generated from
type PredictionSource interface {
	// FetchPredictions returns every prediction recorded for a round
	FetchPredictions(ctx context.Context, roundID int) ([]models.Prediction, error)
}

// OutcomeSource supplies settled arena results. An arena may report more than one winner.
type OutcomeSource interface {
	FetchOutcomes(ctx context.Context, roundID int) ([]models.ArenaOutcome, error)
}

// RoundLister reports the newest settled round
type RoundLister interface {
	LatestRound(ctx context.Context) (int, error)
}

// RoundSource is a full provider of round data
type RoundSource interface {
	PredictionSource
	OutcomeSource
	RoundLister
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeCircuitOpen          = "circuit_open"
)

var (
	// ErrNotFound means the source has no data for the requested round
	ErrNotFound = errors.New("data not found")
	// ErrInvalidData means the source returned a payload that could not be decoded
	ErrInvalidData = errors.New("invalid data format")
	// ErrCircuitOpen means the client stopped calling a failing upstream
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// unavailable wraps err so callers treat the source as down
func unavailable(source, code, message string, err error) error {
	if err == nil {
		err = models.ErrSourceUnavailable
	} else {
		err = errors.Join(models.ErrSourceUnavailable, err)
	}
	return NewDataSourceError(source, code, message, err)
}
