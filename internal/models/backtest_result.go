package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a persisted backtest run
type BacktestRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	RunDate         time.Time       `db:"run_date" json:"run_date"`
	StartRound      int             `db:"start_round" json:"start_round"`
	EndRound        int             `db:"end_round" json:"end_round"`
	RoundsProcessed int             `db:"rounds_processed" json:"rounds_processed"`
	RoundsSkipped   int             `db:"rounds_skipped" json:"rounds_skipped"`
	Anomalies       int             `db:"anomalies" json:"anomalies"`
	UnitStake       float64         `db:"unit_stake" json:"unit_stake"`
	RiskFreeRate    float64         `db:"risk_free_rate" json:"risk_free_rate"`
	TopStrategy     string          `db:"top_strategy" json:"top_strategy"`
	FullResults     json.RawMessage `db:"full_results" json:"full_results"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
