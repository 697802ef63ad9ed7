package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arena-bets/internal/logger"
	"github.com/yourusername/arena-bets/internal/metrics"
	"github.com/yourusername/arena-bets/internal/models"
)

const httpSourceName = "http"

type predictionsResponse struct {
	RoundID     int                 `json:"round_id"`
	Predictions []models.Prediction `json:"predictions"`
}

type resultsResponse struct {
	RoundID int                   `json:"round_id"`
	Results []models.ArenaOutcome `json:"results"`
}

type latestRoundResponse struct {
	RoundID int `json:"round_id"`
}

// HTTPRoundSource reads predictions and outcomes from the prediction service REST API
type HTTPRoundSource struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logger.DataSourceLogger
}

// NewHTTPRoundSource creates a client for the prediction service at baseURL
func NewHTTPRoundSource(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, log *logger.DataSourceLogger) *HTTPRoundSource {
	if log == nil {
		log = logger.NewDataSourceLogger(logrus.StandardLogger(), httpSourceName)
	}
	return &HTTPRoundSource{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     log,
	}
}

// Name returns the source name
func (s *HTTPRoundSource) Name() string {
	return httpSourceName
}

// FetchPredictions retrieves every prediction for a round
func (s *HTTPRoundSource) FetchPredictions(ctx context.Context, roundID int) ([]models.Prediction, error) {
	start := time.Now()
	var body predictionsResponse
	if err := s.getJSON(ctx, "predictions", fmt.Sprintf("/api/v1/rounds/%d/predictions", roundID), &body); err != nil {
		s.logger.LogFetchFailed("predictions", roundID, err)
		return nil, err
	}
	for i := range body.Predictions {
		if body.Predictions[i].RoundID == 0 {
			body.Predictions[i].RoundID = roundID
		}
	}
	s.logger.LogFetch("predictions", roundID, len(body.Predictions), time.Since(start))
	return body.Predictions, nil
}

// FetchOutcomes retrieves the reported winners for a round
func (s *HTTPRoundSource) FetchOutcomes(ctx context.Context, roundID int) ([]models.ArenaOutcome, error) {
	start := time.Now()
	var body resultsResponse
	if err := s.getJSON(ctx, "outcomes", fmt.Sprintf("/api/v1/rounds/%d/results", roundID), &body); err != nil {
		s.logger.LogFetchFailed("outcomes", roundID, err)
		return nil, err
	}
	for i := range body.Results {
		if body.Results[i].RoundID == 0 {
			body.Results[i].RoundID = roundID
		}
	}
	s.logger.LogFetch("outcomes", roundID, len(body.Results), time.Since(start))
	return body.Results, nil
}

// LatestRound returns the newest settled round
func (s *HTTPRoundSource) LatestRound(ctx context.Context) (int, error) {
	var body latestRoundResponse
	if err := s.getJSON(ctx, "latest_round", "/api/v1/rounds/latest", &body); err != nil {
		return 0, err
	}
	return body.RoundID, nil
}

func (s *HTTPRoundSource) getJSON(ctx context.Context, resource, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return NewDataSourceError(httpSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordDataSourceRequest(resource, "failure")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		code := ErrCodeNetworkError
		if errors.Is(err, ErrCircuitOpen) {
			code = ErrCodeCircuitOpen
		}
		return unavailable(httpSourceName, code, "request to "+path+" failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordDataSourceRequest(resource, "not_found")
		return NewDataSourceError(httpSourceName, ErrCodeNotFound, path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.RecordDataSourceRequest(resource, "failure")
		return unavailable(httpSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordDataSourceRequest(resource, "failure")
		return unavailable(httpSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		metrics.RecordDataSourceRequest(resource, "failure")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return unavailable(httpSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordDataSourceRequest(resource, "failure")
		return NewDataSourceError(httpSourceName, ErrCodeInvalidData, "failed to parse response", fmt.Errorf("%w: %v", ErrInvalidData, err))
	}
	metrics.RecordDataSourceRequest(resource, "success")
	return nil
}
