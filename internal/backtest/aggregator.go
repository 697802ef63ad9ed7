package backtest

import "sort"

// Recommendation labels
const (
	RecommendationRecommended = "RECOMMENDED"
	RecommendationViable      = "VIABLE"
	RecommendationAvoid       = "AVOID"
)

const viableConsistency = 0.5

// Rankings lists strategy names best first under each criterion
type Rankings struct {
	ByRiskAdjusted []string `json:"by_risk_adjusted" yaml:"by_risk_adjusted"`
	ByROI          []string `json:"by_roi" yaml:"by_roi"`
	BySharpe       []string `json:"by_sharpe" yaml:"by_sharpe"`
	ByConsistency  []string `json:"by_consistency" yaml:"by_consistency"`
	ByProfitFactor []string `json:"by_profit_factor" yaml:"by_profit_factor"`
}

// RankStrategies orders strategies under every criterion. Ties keep input order.
func RankStrategies(metrics []StrategyMetrics) Rankings {
	return Rankings{
		ByRiskAdjusted: rankBy(metrics, func(m StrategyMetrics) float64 { return m.RiskAdjustedScore }),
		ByROI:          rankBy(metrics, func(m StrategyMetrics) float64 { return m.ROI }),
		BySharpe:       rankBy(metrics, func(m StrategyMetrics) float64 { return m.SharpeRatio }),
		ByConsistency:  rankBy(metrics, func(m StrategyMetrics) float64 { return m.ConsistencyScore }),
		ByProfitFactor: rankBy(metrics, func(m StrategyMetrics) float64 { return m.ProfitFactor.rankValue() }),
	}
}

func rankBy(metrics []StrategyMetrics, value func(StrategyMetrics) float64) []string {
	sorted := append([]StrategyMetrics(nil), metrics...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return value(sorted[i]) > value(sorted[j])
	})
	names := make([]string, len(sorted))
	for i, m := range sorted {
		names[i] = m.StrategyName
	}
	return names
}

// Top returns the primary recommendation, or "" when there are no strategies
func (r Rankings) Top() string {
	if len(r.ByRiskAdjusted) == 0 {
		return ""
	}
	return r.ByRiskAdjusted[0]
}

// GenerateRecommendation labels a strategy given its position in the risk-adjusted ranking
func GenerateRecommendation(m StrategyMetrics, rank int) string {
	switch {
	case rank == 0 && m.TotalBets > 0:
		return RecommendationRecommended
	case m.ROI > 0 && m.ConsistencyScore >= viableConsistency:
		return RecommendationViable
	default:
		return RecommendationAvoid
	}
}
