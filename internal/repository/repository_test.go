package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/arena-bets/internal/database"
	"github.com/yourusername/arena-bets/internal/datasource"
	"github.com/yourusername/arena-bets/internal/models"
)

// outcome storage doubles as a backtest outcome source
var (
	_ datasource.OutcomeSource = (*PostgresOutcomeRepository)(nil)
	_ datasource.RoundLister   = (*PostgresOutcomeRepository)(nil)
)

func samplePerformance(runID uuid.UUID, name string, pf *float64) *models.StrategyPerformance {
	return &models.StrategyPerformance{
		RunID:             runID,
		StrategyName:      name,
		RiskTier:          models.RiskTierMedium,
		Time:              time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		TotalRounds:       10,
		TotalBets:         100,
		WinningBets:       12,
		NetProfit:         4.5,
		ROI:               0.045,
		ProfitFactor:      pf,
		ProfitFactorKind:  "finite",
		RiskAdjustedScore: 0.3,
		Recommendation:    "VIABLE",
	}
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestPerformanceRowsColumnOrder(t *testing.T) {
	pf := 1.4
	runID := uuid.New()
	rows, err := performanceRows([]*models.StrategyPerformance{
		samplePerformance(runID, "Balanced", &pf),
		samplePerformance(runID, "HighRisk", nil),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Len(t, row, len(strategyPerformanceColumns))
	}
	assert.Equal(t, runID, rows[0][0])
	assert.Equal(t, "Balanced", rows[0][1])
	assert.Equal(t, "MEDIUM", rows[0][2])
	assert.Equal(t, &pf, rows[0][12])
	assert.Nil(t, rows[1][12].(*float64))
}

func TestPerformanceRowsRejectsUnnamedStrategy(t *testing.T) {
	_, err := performanceRows([]*models.StrategyPerformance{samplePerformance(uuid.New(), "", nil)})
	assert.ErrorIs(t, err, models.ErrStrategyNameRequired)
}

func TestBacktestRunArgs(t *testing.T) {
	run := &models.BacktestRun{ID: uuid.New(), StartRound: 3, EndRound: 9, TopStrategy: "Moderate", FullResults: json.RawMessage(`{}`)}
	args := backtestRunArgs(run)
	require.Len(t, args, 12)
	assert.Equal(t, run.ID, args[0])
	assert.Equal(t, 3, args[2])
	assert.Equal(t, "Moderate", args[9])
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestReportRepositorySaveReport(t *testing.T) {
	db := database.SetupTestDB(t)
	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pf := 2.0
	run := &models.BacktestRun{
		ID:          uuid.New(),
		RunDate:     time.Now().UTC().Truncate(time.Microsecond),
		StartRound:  1,
		EndRound:    10,
		TopStrategy: "Balanced",
		FullResults: json.RawMessage(`{"top_strategy":"Balanced"}`),
	}
	perfs := []*models.StrategyPerformance{
		samplePerformance(run.ID, "Balanced", &pf),
		samplePerformance(run.ID, "HighRisk", nil),
	}
	require.NoError(t, repos.Reports.SaveReport(ctx, run, perfs))
	assert.ErrorIs(t, repos.Reports.SaveReport(ctx, run, nil), models.ErrDuplicateKey)

	stored, err := repos.Runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "Balanced", stored.TopStrategy)

	rows, err := repos.StrategyPerformance.GetByRunID(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = repos.Runs.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOutcomeRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := NewPostgresOutcomeRepository(db)
	ctx := context.Background()

	round := int(time.Now().UnixNano() % 1_000_000_000)
	outcomes := []models.ArenaOutcome{
		{RoundID: round, ArenaID: 1, WinnerID: 3},
		{RoundID: round, ArenaID: 1, WinnerID: 4},
	}
	require.NoError(t, repo.InsertBatch(ctx, outcomes))

	got, err := repo.FetchOutcomes(ctx, round)
	require.NoError(t, err)
	assert.Equal(t, outcomes, got)

	latest, err := repo.LatestRound(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, latest, round)
}
