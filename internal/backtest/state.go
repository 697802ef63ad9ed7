package backtest

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/arena-bets/internal/models"
	"github.com/yourusername/arena-bets/internal/strategy"
)

// RoundResult is the settled output of one round across all strategies
type RoundResult struct {
	RoundID              int
	Arenas               int
	DuplicatePredictions int
	Series               []models.BetSeries
	Results              []models.RealizedResult
	Anomalies            []WinnerAnomaly
}

// NetProfit sums the round's net profit across strategies
func (r *RoundResult) NetProfit() float64 {
	total := 0.0
	for _, res := range r.Results {
		total += res.NetProfitFloat()
	}
	return total
}

// BacktestState tracks the progress of a run
type BacktestState struct {
	RunID                uuid.UUID
	StartedAt            time.Time
	Profiles             []strategy.Profile
	Results              map[string][]models.RealizedResult
	Underfilled          map[string]int
	RoundsProcessed      []int
	RoundsSkipped        []int
	Anomalies            []WinnerAnomaly
	DuplicatePredictions int
}

// NewBacktestState initializes backtest state for the given profiles
func NewBacktestState(profiles []strategy.Profile) *BacktestState {
	state := &BacktestState{
		RunID:       uuid.New(),
		StartedAt:   time.Now().UTC(),
		Profiles:    profiles,
		Results:     make(map[string][]models.RealizedResult, len(profiles)),
		Underfilled: make(map[string]int, len(profiles)),
	}
	for _, p := range profiles {
		state.Results[p.Name] = []models.RealizedResult{}
	}
	return state
}

// Accumulate appends a settled round. Rounds must arrive in ascending order.
func (s *BacktestState) Accumulate(round *RoundResult) {
	for _, res := range round.Results {
		s.Results[res.StrategyName] = append(s.Results[res.StrategyName], res)
	}
	for _, series := range round.Series {
		if series.Underfilled {
			s.Underfilled[series.StrategyName]++
		}
	}
	s.Anomalies = append(s.Anomalies, round.Anomalies...)
	s.DuplicatePredictions += round.DuplicatePredictions
	s.RoundsProcessed = append(s.RoundsProcessed, round.RoundID)
}

// RecordSkipped notes a round skipped for insufficient data
func (s *BacktestState) RecordSkipped(round int) {
	s.RoundsSkipped = append(s.RoundsSkipped, round)
}

// StrategyNames returns profile names in configured order
func (s *BacktestState) StrategyNames() []string {
	names := make([]string, len(s.Profiles))
	for i, p := range s.Profiles {
		names[i] = p.Name
	}
	return names
}
