package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/yourusername/arena-bets/internal/models"
)

const sqliteSourceName = "sqlite"

// Rows keep insertion order through rowid; duplicates are stored as reported.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
    round_id        INTEGER NOT NULL,
    arena_id        INTEGER NOT NULL,
    competitor_id   INTEGER NOT NULL,
    win_probability REAL    NOT NULL,
    payout          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
    round_id  INTEGER NOT NULL,
    arena_id  INTEGER NOT NULL,
    winner_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_round ON predictions(round_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_round    ON outcomes(round_id);
`

// SQLiteRoundStore is an offline round archive backed by a local SQLite file
type SQLiteRoundStore struct {
	db *sql.DB
}

// NewSQLiteRoundStore opens (or creates) the store at path. Use ":memory:" for tests.
func NewSQLiteRoundStore(path string) (*SQLiteRoundStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", path, err)
	}
	// single writer; also keeps an in-memory database on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteRoundStore{db: db}, nil
}

// Name returns the source name
func (s *SQLiteRoundStore) Name() string {
	return sqliteSourceName
}

// Close closes the underlying database
func (s *SQLiteRoundStore) Close() error {
	return s.db.Close()
}

// SavePredictions appends predictions in a single transaction
func (s *SQLiteRoundStore) SavePredictions(ctx context.Context, preds []models.Prediction) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO predictions (round_id, arena_id, competitor_id, win_probability, payout) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range preds {
			if _, err := stmt.ExecContext(ctx, p.RoundID, p.ArenaID, p.CompetitorID, p.WinProbability, p.Payout); err != nil {
				return fmt.Errorf("insert prediction round=%d arena=%d: %w", p.RoundID, p.ArenaID, err)
			}
		}
		return nil
	})
}

// SaveOutcomes appends reported winners in a single transaction
func (s *SQLiteRoundStore) SaveOutcomes(ctx context.Context, outcomes []models.ArenaOutcome) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO outcomes (round_id, arena_id, winner_id) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, o := range outcomes {
			if _, err := stmt.ExecContext(ctx, o.RoundID, o.ArenaID, o.WinnerID); err != nil {
				return fmt.Errorf("insert outcome round=%d arena=%d: %w", o.RoundID, o.ArenaID, err)
			}
		}
		return nil
	})
}

// FetchPredictions returns a round's predictions in insertion order
func (s *SQLiteRoundStore) FetchPredictions(ctx context.Context, roundID int) ([]models.Prediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT round_id, arena_id, competitor_id, win_probability, payout
		 FROM predictions WHERE round_id = ? ORDER BY rowid`, roundID)
	if err != nil {
		return nil, s.queryError("predictions", err)
	}
	defer rows.Close()

	preds := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.RoundID, &p.ArenaID, &p.CompetitorID, &p.WinProbability, &p.Payout); err != nil {
			return nil, NewDataSourceError(sqliteSourceName, ErrCodeInvalidData, "scan prediction", fmt.Errorf("%w: %v", ErrInvalidData, err))
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError("predictions", err)
	}
	return preds, nil
}

// FetchOutcomes returns a round's reported winners in insertion order
func (s *SQLiteRoundStore) FetchOutcomes(ctx context.Context, roundID int) ([]models.ArenaOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT round_id, arena_id, winner_id FROM outcomes WHERE round_id = ? ORDER BY rowid`, roundID)
	if err != nil {
		return nil, s.queryError("outcomes", err)
	}
	defer rows.Close()

	outcomes := []models.ArenaOutcome{}
	for rows.Next() {
		var o models.ArenaOutcome
		if err := rows.Scan(&o.RoundID, &o.ArenaID, &o.WinnerID); err != nil {
			return nil, NewDataSourceError(sqliteSourceName, ErrCodeInvalidData, "scan outcome", fmt.Errorf("%w: %v", ErrInvalidData, err))
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError("outcomes", err)
	}
	return outcomes, nil
}

// LatestRound returns the highest round with recorded outcomes
func (s *SQLiteRoundStore) LatestRound(ctx context.Context) (int, error) {
	var latest sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(round_id) FROM outcomes`).Scan(&latest); err != nil {
		return 0, s.queryError("latest_round", err)
	}
	if !latest.Valid {
		return 0, NewDataSourceError(sqliteSourceName, ErrCodeNotFound, "no settled rounds", ErrNotFound)
	}
	return int(latest.Int64), nil
}

func (s *SQLiteRoundStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteRoundStore) queryError(resource string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return unavailable(sqliteSourceName, ErrCodeServerError, "query "+resource, err)
}
