package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/arena-bets/internal/datasource"
	"github.com/yourusername/arena-bets/internal/logger"
	"github.com/yourusername/arena-bets/internal/metrics"
	"github.com/yourusername/arena-bets/internal/models"
	"github.com/yourusername/arena-bets/internal/strategy"
)

// Skip reasons
const (
	skipNoPredictions = "no_predictions"
	skipNoOutcomes    = "no_outcomes"
	skipNotFound      = "not_found"
)

// Engine replays historical rounds through every strategy profile
type Engine struct {
	config      BacktestConfig
	predictions datasource.PredictionSource
	outcomes    datasource.OutcomeSource
	assembler   *strategy.Assembler
	logger      *logrus.Logger
	events      *logger.BacktestLogger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg BacktestConfig, predictions datasource.PredictionSource, outcomes datasource.OutcomeSource, log *logrus.Logger) (*Engine, error) {
	if predictions == nil {
		return nil, fmt.Errorf("prediction source is required")
	}
	if outcomes == nil {
		return nil, fmt.Errorf("outcome source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config:      cfg,
		predictions: predictions,
		outcomes:    outcomes,
		assembler:   strategy.NewAssembler(cfg.assemblerConfig()),
		logger:      log,
		events:      logger.NewBacktestLogger(log),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Run replays every round in the configured window in ascending order and
// aggregates the results. Cancellation is honoured between rounds; the round
// in flight is discarded and ctx.Err() is returned.
func (e *Engine) Run(ctx context.Context) (*BacktestState, *Report, error) {
	state := NewBacktestState(e.config.Profiles)
	events := e.events.WithRun(state.RunID.String())
	events.WithFields(logrus.Fields{
		"start_round": e.config.StartRound,
		"end_round":   e.config.EndRound,
		"strategies":  state.StrategyNames(),
	}).Info("Starting backtest run")

	for round := e.config.StartRound; round <= e.config.EndRound; round++ {
		if err := ctx.Err(); err != nil {
			events.WithField("round_id", round).Warn("Backtest cancelled")
			return nil, nil, err
		}

		result, err := e.ProcessRound(ctx, round)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				events.WithField("round_id", round).Warn("Backtest cancelled mid-round")
				return nil, nil, ctxErr
			}
			var skip *skipError
			if errors.As(err, &skip) {
				state.RecordSkipped(round)
				metrics.RecordRoundSkipped(skip.reason)
				events.LogRoundSkipped(round, skip.reason)
				continue
			}
			return nil, nil, err
		}

		state.Accumulate(result)
		metrics.RecordRoundProcessed()
	}

	report, err := Aggregate(ctx, state, e.config)
	if err != nil {
		return nil, nil, err
	}

	events.LogRunSummary(len(state.RoundsProcessed), len(state.RoundsSkipped), len(state.Anomalies), report.TopStrategy, time.Since(state.StartedAt))
	return state, report, nil
}

// ProcessRound loads, generates, and settles a single round. Rounds without
// usable data return an error wrapping models.ErrInsufficientData.
func (e *Engine) ProcessRound(ctx context.Context, round int) (*RoundResult, error) {
	start := time.Now()

	preds, err := e.predictions.FetchPredictions(ctx, round)
	if err != nil {
		return nil, classifyFetchError(round, "predictions", err)
	}
	preds, dropped := models.UniquePredictions(preds)
	if len(preds) == 0 {
		return nil, &skipError{round: round, reason: skipNoPredictions}
	}
	if dropped > 0 {
		e.events.LogDuplicatePredictions(round, dropped)
	}

	series, err := e.GenerateSeries(ctx, round, preds)
	if err != nil {
		return nil, err
	}

	outcomes, err := e.outcomes.FetchOutcomes(ctx, round)
	if err != nil {
		return nil, classifyFetchError(round, "outcomes", err)
	}
	if len(outcomes) == 0 {
		return nil, &skipError{round: round, reason: skipNoOutcomes}
	}

	winners, anomalies := ResolveWinners(round, outcomes)
	for _, a := range anomalies {
		e.events.LogWinnerAnomaly(a.RoundID, a.ArenaID, a.Reported, a.Selected)
		metrics.RecordWinnerAnomaly()
	}

	result := &RoundResult{
		RoundID:              round,
		Arenas:               countArenas(preds),
		DuplicatePredictions: dropped,
		Series:               series,
		Results:              make([]models.RealizedResult, len(series)),
		Anomalies:            anomalies,
	}
	for i, s := range series {
		result.Results[i] = Evaluate(s, winners, e.config.UnitStake)
	}

	e.events.LogRoundCompleted(round, result.Arenas, len(series), result.NetProfit(), time.Since(start))
	return result, nil
}

// GenerateSeries runs every profile concurrently over the round's predictions
// and returns their series in profile order.
func (e *Engine) GenerateSeries(ctx context.Context, round int, preds []models.Prediction) ([]models.BetSeries, error) {
	series := make([]models.BetSeries, len(e.config.Profiles))
	g, gctx := errgroup.WithContext(ctx)

	for i, profile := range e.config.Profiles {
		i, profile := i, profile
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			ranked := strategy.RankPicks(preds, profile)
			s := e.assembler.Assemble(round, profile, ranked)
			metrics.RecordSeries(profile.Name, s.Len(), time.Since(start).Seconds(), s.Underfilled)
			if s.Underfilled {
				e.events.LogUnderfilledSeries(round, profile.Name, s.Len(), e.config.MinBetsRequired)
			}
			series[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return series, nil
}

// skipError marks a round skipped for insufficient data
type skipError struct {
	round  int
	reason string
	err    error
}

func (e *skipError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("round %d skipped (%s): %v", e.round, e.reason, e.err)
	}
	return fmt.Sprintf("round %d skipped (%s)", e.round, e.reason)
}

func (e *skipError) Unwrap() []error {
	if e.err != nil {
		return []error{models.ErrInsufficientData, e.err}
	}
	return []error{models.ErrInsufficientData}
}

// classifyFetchError makes unavailable sources fatal and skips the round otherwise
func classifyFetchError(round int, resource string, err error) error {
	if errors.Is(err, models.ErrSourceUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("fetch %s for round %d: %w", resource, round, err)
	}
	reason := skipNotFound
	if !errors.Is(err, datasource.ErrNotFound) {
		reason = resource + "_invalid"
	}
	return &skipError{round: round, reason: reason, err: err}
}

func countArenas(preds []models.Prediction) int {
	arenas := make(map[int]struct{})
	for _, p := range preds {
		arenas[p.ArenaID] = struct{}{}
	}
	return len(arenas)
}
