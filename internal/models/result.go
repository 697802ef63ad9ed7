package models

import "github.com/shopspring/decimal"

// RealizedResult is the settled outcome of one strategy's series for one round
type RealizedResult struct {
	RoundID       int             `json:"round_id" yaml:"round_id"`
	StrategyName  string          `json:"strategy_name" yaml:"strategy_name"`
	TotalBets     int             `json:"total_bets" yaml:"total_bets"`
	WinningBets   int             `json:"winning_bets" yaml:"winning_bets"`
	BetCost       decimal.Decimal `json:"bet_cost" yaml:"bet_cost"`
	TotalWinnings decimal.Decimal `json:"total_winnings" yaml:"total_winnings"`
	NetProfit     decimal.Decimal `json:"net_profit" yaml:"net_profit"`
	ROI           float64         `json:"roi" yaml:"roi"`
}

// NewRealizedResult settles a round from the bet count, winners and stake.
// Winning bets return stake times their total payout; losing bets forfeit the stake.
func NewRealizedResult(round int, strategy string, bets []Bet, winners map[int]int, stake decimal.Decimal) RealizedResult {
	res := RealizedResult{
		RoundID:       round,
		StrategyName:  strategy,
		TotalBets:     len(bets),
		TotalWinnings: decimal.Zero,
	}
	for _, b := range bets {
		if b.Wins(winners) {
			res.WinningBets++
			res.TotalWinnings = res.TotalWinnings.Add(stake.Mul(decimal.NewFromInt(b.TotalPayout)))
		}
	}
	res.BetCost = stake.Mul(decimal.NewFromInt(int64(len(bets))))
	res.NetProfit = res.TotalWinnings.Sub(res.BetCost)
	if res.BetCost.IsPositive() {
		res.ROI = res.NetProfit.Div(res.BetCost).InexactFloat64()
	}
	return res
}

// NetProfitFloat returns the net profit as a float for statistics
func (r RealizedResult) NetProfitFloat() float64 {
	return r.NetProfit.InexactFloat64()
}

// Profitable reports whether the round made money
func (r RealizedResult) Profitable() bool {
	return r.NetProfit.IsPositive()
}
