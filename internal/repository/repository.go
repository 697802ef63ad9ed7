package repository

import (
	"fmt"

	"github.com/yourusername/arena-bets/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Runs                BacktestRunRepository
	StrategyPerformance StrategyPerformanceRepository
	Outcomes            OutcomeRepository
	Reports             ReportRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Runs:                NewPostgresBacktestRunRepository(db),
		StrategyPerformance: NewPostgresStrategyPerformanceRepository(db),
		Outcomes:            NewPostgresOutcomeRepository(db),
		Reports:             NewPostgresReportRepository(db),
	}, nil
}
