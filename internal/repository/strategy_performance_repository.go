package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/arena-bets/internal/database"
	"github.com/yourusername/arena-bets/internal/models"
)

var strategyPerformanceColumns = []string{
	"run_id", "strategy_name", "risk_tier", "time", "total_rounds", "total_bets", "winning_bets",
	"net_profit", "roi", "sharpe_ratio", "sortino_ratio", "max_drawdown", "profit_factor",
	"profit_factor_kind", "consistency", "risk_adjusted_score", "recommendation",
}

const selectStrategyPerformanceSQL = `
	SELECT run_id, strategy_name, risk_tier, time, total_rounds, total_bets, winning_bets,
	       net_profit, roi, sharpe_ratio, sortino_ratio, max_drawdown, profit_factor,
	       profit_factor_kind, consistency, risk_adjusted_score, recommendation
	FROM strategy_performance
`

// PostgresStrategyPerformanceRepository implements StrategyPerformanceRepository for PostgreSQL
type PostgresStrategyPerformanceRepository struct {
	db *database.DB
}

// NewPostgresStrategyPerformanceRepository creates a new strategy performance repository
func NewPostgresStrategyPerformanceRepository(db *database.DB) StrategyPerformanceRepository {
	return &PostgresStrategyPerformanceRepository{db: db}
}

// InsertBatch bulk-inserts strategy performance rows with COPY
func (sp *PostgresStrategyPerformanceRepository) InsertBatch(ctx context.Context, perfs []*models.StrategyPerformance) error {
	return sp.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return copyPerformances(ctx, tx, perfs)
	})
}

// GetByRunID retrieves every strategy's row for a run
func (sp *PostgresStrategyPerformanceRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.StrategyPerformance, error) {
	return sp.query(ctx, selectStrategyPerformanceSQL+` WHERE run_id = $1 ORDER BY risk_adjusted_score DESC`, runID)
}

// GetHistory retrieves a strategy's most recent rows across runs
func (sp *PostgresStrategyPerformanceRepository) GetHistory(ctx context.Context, strategyName string, limit int) ([]*models.StrategyPerformance, error) {
	return sp.query(ctx, selectStrategyPerformanceSQL+` WHERE strategy_name = $1 ORDER BY time DESC LIMIT $2`, strategyName, limit)
}

func (sp *PostgresStrategyPerformanceRepository) query(ctx context.Context, query string, args ...any) ([]*models.StrategyPerformance, error) {
	rows, err := sp.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategy performance: %w", err)
	}
	defer rows.Close()

	var performances []*models.StrategyPerformance
	for rows.Next() {
		perf := &models.StrategyPerformance{}
		if err := rows.Scan(
			&perf.RunID, &perf.StrategyName, &perf.RiskTier, &perf.Time, &perf.TotalRounds, &perf.TotalBets, &perf.WinningBets,
			&perf.NetProfit, &perf.ROI, &perf.SharpeRatio, &perf.SortinoRatio, &perf.MaxDrawdown, &perf.ProfitFactor,
			&perf.ProfitFactorKind, &perf.Consistency, &perf.RiskAdjustedScore, &perf.Recommendation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance: %w", err)
		}
		performances = append(performances, perf)
	}
	return performances, rows.Err()
}

func copyPerformances(ctx context.Context, tx pgx.Tx, perfs []*models.StrategyPerformance) error {
	if len(perfs) == 0 {
		return nil
	}
	rows, err := performanceRows(perfs)
	if err != nil {
		return err
	}

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"strategy_performance"}, strategyPerformanceColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy strategy performance: %w", err)
	}
	if copyCount != int64(len(perfs)) {
		return fmt.Errorf("expected to insert %d rows, inserted %d", len(perfs), copyCount)
	}
	return nil
}

// performanceRows validates and flattens rows in column order
func performanceRows(perfs []*models.StrategyPerformance) ([][]any, error) {
	rows := make([][]any, len(perfs))
	for i, p := range perfs {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("strategy performance %d: %w", i, err)
		}
		rows[i] = []any{
			p.RunID, p.StrategyName, string(p.RiskTier), p.Time, p.TotalRounds, p.TotalBets, p.WinningBets,
			p.NetProfit, p.ROI, p.SharpeRatio, p.SortinoRatio, p.MaxDrawdown, p.ProfitFactor,
			p.ProfitFactorKind, p.Consistency, p.RiskAdjustedScore, p.Recommendation,
		}
	}
	return rows, nil
}
