package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/arena-bets/internal/database"
	"github.com/yourusername/arena-bets/internal/models"
)

const errScanBacktestRun = "failed to scan backtest run: %w"

const insertBacktestRunSQL = `
	INSERT INTO backtest_runs (
		id, run_date, start_round, end_round, rounds_processed, rounds_skipped,
		anomalies, unit_stake, risk_free_rate, top_strategy, full_results, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`

const selectBacktestRunSQL = `
	SELECT id, run_date, start_round, end_round, rounds_processed, rounds_skipped,
		anomalies, unit_stake, risk_free_rate, top_strategy, full_results, created_at
	FROM backtest_runs
`

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Save inserts a backtest run
func (r *PostgresBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	return saveRun(ctx, r.db, run)
}

// GetByID retrieves a run by ID
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	run := &models.BacktestRun{}
	err := scanRun(r.db.QueryRow(ctx, selectBacktestRunSQL+` WHERE id = $1`, id), run)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestRun, err)
	}
	return run, nil
}

// GetLatest retrieves the most recent runs
func (r *PostgresBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	rows, err := r.db.Query(ctx, selectBacktestRunSQL+` ORDER BY run_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		if err := scanRun(rows, run); err != nil {
			return nil, fmt.Errorf(errScanBacktestRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func saveRun(ctx context.Context, q database.Querier, run *models.BacktestRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if _, err := q.Exec(ctx, insertBacktestRunSQL, backtestRunArgs(run)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("backtest run %s: %w", run.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

func backtestRunArgs(run *models.BacktestRun) []any {
	return []any{
		run.ID, run.RunDate, run.StartRound, run.EndRound, run.RoundsProcessed, run.RoundsSkipped,
		run.Anomalies, run.UnitStake, run.RiskFreeRate, run.TopStrategy, run.FullResults, run.CreatedAt,
	}
}

func scanRun(row pgx.Row, run *models.BacktestRun) error {
	return row.Scan(
		&run.ID, &run.RunDate, &run.StartRound, &run.EndRound, &run.RoundsProcessed, &run.RoundsSkipped,
		&run.Anomalies, &run.UnitStake, &run.RiskFreeRate, &run.TopStrategy, &run.FullResults, &run.CreatedAt,
	)
}
