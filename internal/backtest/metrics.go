package backtest

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/arena-bets/internal/models"
)

// SortinoNoDownside is reported when no round returned less than the risk-free rate
// and the mean return beats it.
const SortinoNoDownside = 100.0

// Consistency and risk-adjusted score weights
const (
	consistencyProfitableWeight = 0.5
	consistencyStabilityWeight  = 0.3
	consistencyTailWeight       = 0.2
	maxRoundLossFraction        = 0.5

	riskAdjustedMeanWeight        = 0.3
	riskAdjustedSharpeWeight      = 0.3
	riskAdjustedConsistencyWeight = 0.2
	riskAdjustedPFWeight          = 0.2
	profitFactorCap               = 5.0
)

// StrategyMetrics represents one strategy's performance across a backtest window
type StrategyMetrics struct {
	StrategyName      string          `json:"strategy_name" yaml:"strategy_name"`
	RiskTier          models.RiskTier `json:"risk_tier" yaml:"risk_tier"`
	TotalRounds       int             `json:"total_rounds" yaml:"total_rounds"`
	TotalBets         int             `json:"total_bets" yaml:"total_bets"`
	WinningBets       int             `json:"winning_bets" yaml:"winning_bets"`
	HitRate           float64         `json:"hit_rate" yaml:"hit_rate"`
	TotalCost         float64         `json:"total_cost" yaml:"total_cost"`
	TotalWinnings     float64         `json:"total_winnings" yaml:"total_winnings"`
	NetProfit         float64         `json:"net_profit" yaml:"net_profit"`
	ROI               float64         `json:"roi" yaml:"roi"`
	MeanReturn        float64         `json:"mean_return" yaml:"mean_return"`
	StdDevReturn      float64         `json:"std_dev_return" yaml:"std_dev_return"`
	SharpeRatio       float64         `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	SortinoRatio      float64         `json:"sortino_ratio" yaml:"sortino_ratio"`
	MaxDrawdown       float64         `json:"max_drawdown" yaml:"max_drawdown"`
	GrossProfit       float64         `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss         float64         `json:"gross_loss" yaml:"gross_loss"`
	ProfitFactor      ProfitFactor    `json:"profit_factor" yaml:"profit_factor"`
	ProfitableRounds  int             `json:"profitable_rounds" yaml:"profitable_rounds"`
	ConsistencyScore  float64         `json:"consistency_score" yaml:"consistency_score"`
	RiskAdjustedScore float64         `json:"risk_adjusted_score" yaml:"risk_adjusted_score"`
	MaxWinStreak      int             `json:"max_win_streak" yaml:"max_win_streak"`
	MaxLossStreak     int             `json:"max_loss_streak" yaml:"max_loss_streak"`
	LargestWin        float64         `json:"largest_win" yaml:"largest_win"`
	LargestLoss       float64         `json:"largest_loss" yaml:"largest_loss"`
	UnderfilledSeries int             `json:"underfilled_series" yaml:"underfilled_series"`
}

// CalculateStrategyMetrics folds a strategy's per-round results, in round order, into metrics
func CalculateStrategyMetrics(name string, tier models.RiskTier, results []models.RealizedResult, riskFreeRate float64) StrategyMetrics {
	m := StrategyMetrics{
		StrategyName: name,
		RiskTier:     tier,
		TotalRounds:  len(results),
		ProfitFactor: NewProfitFactor(0, 0),
	}
	if len(results) == 0 {
		return m
	}

	cost, winnings, net := decimal.Zero, decimal.Zero, decimal.Zero
	returns := make([]float64, len(results))
	profits := make([]float64, len(results))
	for i, r := range results {
		m.TotalBets += r.TotalBets
		m.WinningBets += r.WinningBets
		cost = cost.Add(r.BetCost)
		winnings = winnings.Add(r.TotalWinnings)
		net = net.Add(r.NetProfit)
		returns[i] = r.ROI
		profits[i] = r.NetProfitFloat()
	}

	m.TotalCost = cost.InexactFloat64()
	m.TotalWinnings = winnings.InexactFloat64()
	m.NetProfit = net.InexactFloat64()
	if cost.IsPositive() {
		m.ROI = net.Div(cost).InexactFloat64()
	}
	if m.TotalBets > 0 {
		m.HitRate = float64(m.WinningBets) / float64(m.TotalBets)
	}

	m.MeanReturn = average(returns)
	m.StdDevReturn = stddev(returns)
	m.SharpeRatio = calculateSharpeRatio(returns, riskFreeRate)
	m.SortinoRatio = calculateSortinoRatio(returns, riskFreeRate)
	m.MaxDrawdown = NewEquityCurveFromProfits(profits).MaxDrawdown()

	m.GrossProfit, m.GrossLoss, m.LargestWin, m.LargestLoss = calculateRoundStats(profits)
	m.ProfitFactor = NewProfitFactor(m.GrossProfit, m.GrossLoss)
	m.MaxWinStreak, m.MaxLossStreak = calculateStreaks(profits)
	for _, p := range profits {
		if p > 0 {
			m.ProfitableRounds++
		}
	}

	m.ConsistencyScore = calculateConsistency(results, m.ProfitableRounds, m.StdDevReturn)
	m.RiskAdjustedScore = calculateRiskAdjustedScore(m)
	return m
}

// deviationEpsilon is the spread below which returns are treated as constant.
const deviationEpsilon = 1e-12

// calculateSharpeRatio is (mean - rf) / std over per-round returns; 0 when std is 0
func calculateSharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std < deviationEpsilon {
		return 0
	}
	return (average(returns) - riskFreeRate) / std
}

// calculateSortinoRatio divides excess return by the downside deviation, the
// root mean square of (r - rf) over rounds returning less than rf
func calculateSortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := average(returns)
	dd := downsideDeviation(returns, riskFreeRate)
	if dd < deviationEpsilon {
		if mean > riskFreeRate {
			return SortinoNoDownside
		}
		return 0
	}
	return (mean - riskFreeRate) / dd
}

func downsideDeviation(returns []float64, threshold float64) float64 {
	sum := 0.0
	count := 0
	for _, r := range returns {
		if r < threshold {
			diff := r - threshold
			sum += diff * diff
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}

func calculateRoundStats(profits []float64) (grossProfit, grossLoss, largestWin, largestLoss float64) {
	for _, p := range profits {
		if p > 0 {
			grossProfit += p
			if p > largestWin {
				largestWin = p
			}
		} else if p < 0 {
			grossLoss += -p
			if p < largestLoss {
				largestLoss = p
			}
		}
	}
	return grossProfit, grossLoss, largestWin, largestLoss
}

func calculateStreaks(profits []float64) (maxWin, maxLoss int) {
	win, loss := 0, 0
	for _, p := range profits {
		switch {
		case p > 0:
			win++
			loss = 0
		case p < 0:
			loss++
			win = 0
		default:
			win, loss = 0, 0
		}
		if win > maxWin {
			maxWin = win
		}
		if loss > maxLoss {
			maxLoss = loss
		}
	}
	return maxWin, maxLoss
}

func calculateConsistency(results []models.RealizedResult, profitableRounds int, std float64) float64 {
	if len(results) == 0 {
		return 0
	}
	tail := 1.0
	for _, r := range results {
		if r.ROI < -maxRoundLossFraction {
			tail = 0.5
			break
		}
	}
	profitable := float64(profitableRounds) / float64(len(results))
	return consistencyProfitableWeight*profitable +
		consistencyStabilityWeight*(1/(1+std)) +
		consistencyTailWeight*tail
}

func calculateRiskAdjustedScore(m StrategyMetrics) float64 {
	pf := math.Min(m.ProfitFactor.Score()/profitFactorCap, 1)
	return riskAdjustedMeanWeight*m.MeanReturn +
		riskAdjustedSharpeWeight*m.SharpeRatio +
		riskAdjustedConsistencyWeight*m.ConsistencyScore +
		riskAdjustedPFWeight*pf
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

// stddev is the population standard deviation. Identical values give exactly 0.
func stddev(values []float64) float64 {
	if len(values) == 0 || allEqual(values) {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	if std := math.Sqrt(variance); std >= deviationEpsilon {
		return std
	}
	return 0
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
