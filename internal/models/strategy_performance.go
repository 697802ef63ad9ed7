package models

import (
	"time"

	"github.com/google/uuid"
)

// StrategyPerformance is one strategy's metrics row for a persisted backtest run
type StrategyPerformance struct {
	RunID             uuid.UUID `db:"run_id" json:"run_id" validate:"required"`
	StrategyName      string    `db:"strategy_name" json:"strategy_name" validate:"required"`
	RiskTier          RiskTier  `db:"risk_tier" json:"risk_tier" validate:"required"`
	Time              time.Time `db:"time" json:"time" validate:"required"`
	TotalRounds       int       `db:"total_rounds" json:"total_rounds" validate:"gte=0"`
	TotalBets         int       `db:"total_bets" json:"total_bets" validate:"gte=0"`
	WinningBets       int       `db:"winning_bets" json:"winning_bets" validate:"gte=0"`
	NetProfit         float64   `db:"net_profit" json:"net_profit"`
	ROI               float64   `db:"roi" json:"roi"`
	SharpeRatio       float64   `db:"sharpe_ratio" json:"sharpe_ratio"`
	SortinoRatio      float64   `db:"sortino_ratio" json:"sortino_ratio"`
	MaxDrawdown       float64   `db:"max_drawdown" json:"max_drawdown"`
	ProfitFactor      *float64  `db:"profit_factor" json:"profit_factor"`
	ProfitFactorKind  string    `db:"profit_factor_kind" json:"profit_factor_kind"`
	Consistency       float64   `db:"consistency" json:"consistency"`
	RiskAdjustedScore float64   `db:"risk_adjusted_score" json:"risk_adjusted_score"`
	Recommendation    string    `db:"recommendation" json:"recommendation"`
}

// GetWinRate calculates the win rate as a percentage
func (sp *StrategyPerformance) GetWinRate() float64 {
	if sp.TotalBets == 0 {
		return 0
	}
	return (float64(sp.WinningBets) / float64(sp.TotalBets)) * 100
}

// Validate checks the fields required for persistence
func (sp *StrategyPerformance) Validate() error {
	if sp.StrategyName == "" {
		return ErrStrategyNameRequired
	}
	return nil
}
