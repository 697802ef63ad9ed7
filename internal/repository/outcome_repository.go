package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/arena-bets/internal/database"
	"github.com/yourusername/arena-bets/internal/models"
)

// PostgresOutcomeRepository implements OutcomeRepository for PostgreSQL
type PostgresOutcomeRepository struct {
	db *database.DB
}

// NewPostgresOutcomeRepository creates a new outcome repository
func NewPostgresOutcomeRepository(db *database.DB) *PostgresOutcomeRepository {
	return &PostgresOutcomeRepository{db: db}
}

// InsertBatch inserts reported winners using COPY
func (r *PostgresOutcomeRepository) InsertBatch(ctx context.Context, outcomes []models.ArenaOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	rows := make([][]any, len(outcomes))
	for i, o := range outcomes {
		rows[i] = []any{o.RoundID, o.ArenaID, o.WinnerID}
	}

	copyCount, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{"arena_outcomes"},
		[]string{"round_id", "arena_id", "winner_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy arena outcomes: %w", err)
	}
	if copyCount != int64(len(outcomes)) {
		return fmt.Errorf("expected to insert %d rows, inserted %d", len(outcomes), copyCount)
	}
	return nil
}

// FetchOutcomes returns a round's reported winners in insertion order
func (r *PostgresOutcomeRepository) FetchOutcomes(ctx context.Context, roundID int) ([]models.ArenaOutcome, error) {
	rows, err := r.db.Query(ctx,
		`SELECT round_id, arena_id, winner_id FROM arena_outcomes WHERE round_id = $1 ORDER BY id`, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query arena outcomes: %w: %w", models.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	outcomes := []models.ArenaOutcome{}
	for rows.Next() {
		var o models.ArenaOutcome
		if err := rows.Scan(&o.RoundID, &o.ArenaID, &o.WinnerID); err != nil {
			return nil, fmt.Errorf("failed to scan arena outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read arena outcomes: %w: %w", models.ErrSourceUnavailable, err)
	}
	return outcomes, nil
}

// LatestRound returns the highest round with recorded outcomes
func (r *PostgresOutcomeRepository) LatestRound(ctx context.Context) (int, error) {
	var latest sql.NullInt64
	if err := r.db.QueryRow(ctx, `SELECT MAX(round_id) FROM arena_outcomes`).Scan(&latest); err != nil {
		return 0, fmt.Errorf("failed to query latest round: %w", err)
	}
	if !latest.Valid {
		return 0, models.ErrNotFound
	}
	return int(latest.Int64), nil
}
