package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/arena-bets/internal/models"
)

// BacktestRunRepository defines the interface for backtest run data access
type BacktestRunRepository interface {
	Save(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
}

// StrategyPerformanceRepository defines the interface for per-strategy run metrics
type StrategyPerformanceRepository interface {
	InsertBatch(ctx context.Context, perfs []*models.StrategyPerformance) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.StrategyPerformance, error)
	GetHistory(ctx context.Context, strategyName string, limit int) ([]*models.StrategyPerformance, error)
}

// OutcomeRepository stores settled arena results. It satisfies the datasource
// outcome and round-listing interfaces.
type OutcomeRepository interface {
	InsertBatch(ctx context.Context, outcomes []models.ArenaOutcome) error
	FetchOutcomes(ctx context.Context, roundID int) ([]models.ArenaOutcome, error)
	LatestRound(ctx context.Context) (int, error)
}

// ReportRepository persists a whole backtest report atomically
type ReportRepository interface {
	SaveReport(ctx context.Context, run *models.BacktestRun, perfs []*models.StrategyPerformance) error
}
