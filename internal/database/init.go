package database

import (
	"context"
	"fmt"

	"github.com/yourusername/arena-bets/internal/config"
)

// Schema holds the tables the backtester persists into
const Schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
    id               UUID PRIMARY KEY,
    run_date         TIMESTAMPTZ NOT NULL,
    start_round      INTEGER NOT NULL,
    end_round        INTEGER NOT NULL,
    rounds_processed INTEGER NOT NULL,
    rounds_skipped   INTEGER NOT NULL,
    anomalies        INTEGER NOT NULL,
    unit_stake       DOUBLE PRECISION NOT NULL,
    risk_free_rate   DOUBLE PRECISION NOT NULL,
    top_strategy     TEXT NOT NULL,
    full_results     JSONB NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS strategy_performance (
    run_id              UUID NOT NULL REFERENCES backtest_runs(id) ON DELETE CASCADE,
    strategy_name       TEXT NOT NULL,
    risk_tier           TEXT NOT NULL,
    time                TIMESTAMPTZ NOT NULL,
    total_rounds        INTEGER NOT NULL,
    total_bets          INTEGER NOT NULL,
    winning_bets        INTEGER NOT NULL,
    net_profit          DOUBLE PRECISION NOT NULL,
    roi                 DOUBLE PRECISION NOT NULL,
    sharpe_ratio        DOUBLE PRECISION NOT NULL,
    sortino_ratio       DOUBLE PRECISION NOT NULL,
    max_drawdown        DOUBLE PRECISION NOT NULL,
    profit_factor       DOUBLE PRECISION,
    profit_factor_kind  TEXT NOT NULL,
    consistency         DOUBLE PRECISION NOT NULL,
    risk_adjusted_score DOUBLE PRECISION NOT NULL,
    recommendation      TEXT NOT NULL,
    PRIMARY KEY (run_id, strategy_name)
);

CREATE TABLE IF NOT EXISTS arena_outcomes (
    id        BIGSERIAL PRIMARY KEY,
    round_id  INTEGER NOT NULL,
    arena_id  INTEGER NOT NULL,
    winner_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_arena_outcomes_round ON arena_outcomes(round_id);
CREATE INDEX IF NOT EXISTS idx_strategy_performance_time ON strategy_performance(time DESC);
`

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates missing tables and indexes
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
