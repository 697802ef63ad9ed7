package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/arena-bets/internal/config"
	"github.com/yourusername/arena-bets/internal/logger"
	"github.com/yourusername/arena-bets/internal/models"
)

func testLogger() *logger.DataSourceLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logger.NewDataSourceLogger(log, "test")
}

func testClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      5 * time.Millisecond,
		CircuitBreakerMax: 3,
		CircuitCooldown:   time.Minute,
	}
}

func newTestHTTPSource(t *testing.T, handler http.HandlerFunc) (*HTTPRoundSource, *RateLimitedHTTPClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewRateLimitedHTTPClient(testClientConfig(), testLogger())
	return NewHTTPRoundSource(client, server.URL+"/", "secret", testLogger()), client
}

func TestHTTPRoundSourceFetchPredictions(t *testing.T) {
	var auth string
	source, _ := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/v1/rounds/12/predictions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"round_id":12,"predictions":[
			{"arena_id":1,"competitor_id":3,"win_probability":0.4,"payout":3},
			{"arena_id":2,"competitor_id":5,"win_probability":0.2,"payout":6}]}`)
	})

	preds, err := source.FetchPredictions(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, models.Prediction{RoundID: 12, ArenaID: 1, CompetitorID: 3, WinProbability: 0.4, Payout: 3}, preds[0])
	assert.Equal(t, 12, preds[1].RoundID)
}

func TestHTTPRoundSourceFetchOutcomesKeepsConflicts(t *testing.T) {
	source, _ := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"round_id":4,"results":[{"arena_id":1,"winner_id":2},{"arena_id":1,"winner_id":3}]}`)
	})

	outcomes, err := source.FetchOutcomes(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []models.ArenaOutcome{
		{RoundID: 4, ArenaID: 1, WinnerID: 2},
		{RoundID: 4, ArenaID: 1, WinnerID: 3},
	}, outcomes)
}

func TestHTTPRoundSourceErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		notFound    bool
		unavailable bool
		invalid     bool
	}{
		{name: "not found", status: http.StatusNotFound, notFound: true},
		{name: "server error", status: http.StatusInternalServerError, unavailable: true},
		{name: "unauthorized", status: http.StatusUnauthorized, unavailable: true},
		{name: "bad payload", status: http.StatusOK, body: "{not json", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, _ := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := source.FetchPredictions(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
			assert.Equal(t, tt.unavailable, errors.Is(err, models.ErrSourceUnavailable))
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidData))

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, "http", dsErr.Source)
		})
	}
}

func TestHTTPRoundSourceLatestRound(t *testing.T) {
	source, _ := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rounds/latest", r.URL.Path)
		fmt.Fprint(w, `{"round_id":981}`)
	})

	latest, err := source.LatestRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 981, latest)
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var calls atomic.Int32
	source, client := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	now := time.Now()
	client.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := source.FetchOutcomes(context.Background(), 1)
		require.ErrorIs(t, err, models.ErrSourceUnavailable)
	}
	assert.True(t, client.IsOpen())

	_, err := source.FetchOutcomes(context.Background(), 1)
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.ErrorIs(t, err, models.ErrSourceUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "open circuit must not reach the server")

	now = now.Add(2 * time.Minute)
	assert.False(t, client.IsOpen())
	_, err = source.FetchOutcomes(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())
	assert.True(t, client.IsOpen(), "a failed half-open trial reopens the circuit")
}

func TestCircuitBreakerAllowsSingleHalfOpenTrial(t *testing.T) {
	var calls atomic.Int32
	var healthy atomic.Bool
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := NewRateLimitedHTTPClient(testClientConfig(), testLogger())
	now := time.Now()
	client.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	require.True(t, client.IsOpen())

	healthy.Store(true)
	now = now.Add(2 * time.Minute)

	trialDone := make(chan error, 1)
	go func() {
		resp, err := client.Get(context.Background(), server.URL)
		if err == nil {
			resp.Body.Close()
		}
		trialDone <- err
	}()
	<-entered

	assert.True(t, client.IsOpen(), "circuit stays half-open while the trial request is in flight")
	_, err := client.Get(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(4), calls.Load())

	close(release)
	require.NoError(t, <-trialDone)
	assert.False(t, client.IsOpen())

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(5), calls.Load())
}

func TestCircuitBreakerReleasesUnsentTrial(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewRateLimitedHTTPClient(testClientConfig(), testLogger())
	now := time.Now()
	client.now = func() time.Time { return now }
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	now = now.Add(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load())

	assert.False(t, client.IsOpen(), "a cancelled trial frees the half-open slot")
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(4), calls.Load())
	assert.True(t, client.IsOpen())
}

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (c *countingSource) FetchPredictions(ctx context.Context, roundID int) ([]models.Prediction, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []models.Prediction{{RoundID: roundID, ArenaID: 1, CompetitorID: 1, WinProbability: 0.5, Payout: 2}}, nil
}

func TestCachedPredictionSource(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedPredictionSource(inner, time.Minute, testLogger())
	ctx := context.Background()

	first, err := cached.FetchPredictions(ctx, 7)
	require.NoError(t, err)
	first[0].Payout = 99

	second, err := cached.FetchPredictions(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, second[0].Payout, "callers must not mutate cached entries")
	assert.Equal(t, int32(1), inner.calls.Load())

	hits, misses := cached.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.InDelta(t, 0.5, cached.HitRatio(), 1e-9)

	cached.Invalidate(7)
	_, err = cached.FetchPredictions(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedPredictionSourceDoesNotCacheErrors(t *testing.T) {
	inner := &countingSource{err: ErrNotFound}
	cached := NewCachedPredictionSource(inner, time.Minute, nil)

	for i := 0; i < 2; i++ {
		_, err := cached.FetchPredictions(context.Background(), 1)
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
}

func newMemoryStore(t *testing.T) *SQLiteRoundStore {
	t.Helper()
	store, err := NewSQLiteRoundStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteRoundStoreRoundTrip(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	preds := []models.Prediction{
		{RoundID: 3, ArenaID: 2, CompetitorID: 4, WinProbability: 0.3, Payout: 4},
		{RoundID: 3, ArenaID: 1, CompetitorID: 1, WinProbability: 0.6, Payout: 2},
		{RoundID: 3, ArenaID: 1, CompetitorID: 1, WinProbability: 0.1, Payout: 9},
		{RoundID: 4, ArenaID: 1, CompetitorID: 2, WinProbability: 0.5, Payout: 3},
	}
	require.NoError(t, store.SavePredictions(ctx, preds))
	require.NoError(t, store.SaveOutcomes(ctx, []models.ArenaOutcome{
		{RoundID: 3, ArenaID: 1, WinnerID: 1},
		{RoundID: 3, ArenaID: 2, WinnerID: 4},
		{RoundID: 5, ArenaID: 1, WinnerID: 2},
	}))

	got, err := store.FetchPredictions(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, preds[:3], got, "insertion order and duplicates are preserved")

	outcomes, err := store.FetchOutcomes(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)

	empty, err := store.FetchPredictions(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, empty)

	latest, err := store.LatestRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, latest)
}

func TestSQLiteRoundStoreLatestRoundEmpty(t *testing.T) {
	store := newMemoryStore(t)
	_, err := store.LatestRound(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactoryNewSources(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	factory := NewFactory(log)

	sources, err := factory.NewSources(config.DataSourceConfig{Type: "sqlite", SQLitePath: ":memory:", CacheTTLSeconds: 60})
	require.NoError(t, err)
	defer sources.Close()
	require.NotNil(t, sources.Cache)
	assert.Same(t, sources.Cache, sources.Predictions)

	_, err = factory.NewSources(config.DataSourceConfig{Type: "http"})
	assert.Error(t, err)

	_, err = factory.NewSources(config.DataSourceConfig{Type: "ftp"})
	assert.Error(t, err)
}
