package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/arena-bets/internal/database"
	"github.com/yourusername/arena-bets/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresReportRepository writes a run and its strategy rows in one transaction
type PostgresReportRepository struct {
	db *database.DB
}

// NewPostgresReportRepository creates a new report repository
func NewPostgresReportRepository(db *database.DB) ReportRepository {
	return &PostgresReportRepository{db: db}
}

// SaveReport inserts the run followed by its strategy performance rows
func (r *PostgresReportRepository) SaveReport(ctx context.Context, run *models.BacktestRun, perfs []*models.StrategyPerformance) error {
	if run == nil {
		return fmt.Errorf("backtest run is required")
	}
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := saveRun(ctx, tx, run); err != nil {
			return err
		}
		return copyPerformances(ctx, tx, perfs)
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
