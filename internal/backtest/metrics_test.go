package backtest

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/arena-bets/internal/models"
)

func roundResult(round int, cost, net float64) models.RealizedResult {
	c := decimal.NewFromFloat(cost)
	n := decimal.NewFromFloat(net)
	r := models.RealizedResult{
		RoundID:       round,
		StrategyName:  "Test",
		TotalBets:     int(cost),
		BetCost:       c,
		TotalWinnings: c.Add(n),
		NetProfit:     n,
	}
	if c.IsPositive() {
		r.ROI = n.Div(c).InexactFloat64()
	}
	if n.IsPositive() {
		r.WinningBets = 1
	}
	return r
}

func TestSharpeRatio(t *testing.T) {
	sharpe := calculateSharpeRatio([]float64{0.2, 0.0}, 0)
	if math.Abs(sharpe-1.0) > 1e-12 {
		t.Fatalf("expected sharpe 1.0, got %f", sharpe)
	}
}

func TestSharpeRatioZeroVariance(t *testing.T) {
	assert.Equal(t, 0.0, calculateSharpeRatio([]float64{0.1, 0.1, 0.1}, 0.02))
	assert.Equal(t, 0.0, calculateSharpeRatio(nil, 0.02))
	assert.Equal(t, 0.0, calculateSharpeRatio([]float64{0.3, 0.1 + 0.2, 0.3}, 0.02))
	assert.Equal(t, 0.0, stddev([]float64{0.1, 0.1, 0.1}))
}

func TestCalculateStrategyMetricsConstantReturns(t *testing.T) {
	results := []models.RealizedResult{
		roundResult(1, 10, 1),
		roundResult(2, 10, 1),
		roundResult(3, 10, 1),
	}
	for _, r := range results {
		require.InDelta(t, 0.1, r.ROI, 1e-12)
	}

	m := CalculateStrategyMetrics("Flat", models.RiskTierLow, results, 0.02)

	assert.Equal(t, 0.0, m.StdDevReturn)
	assert.Equal(t, 0.0, m.SharpeRatio)
	assert.Equal(t, SortinoNoDownside, m.SortinoRatio)
	assert.InDelta(t, 1.0, m.ConsistencyScore, 1e-9)
	assert.InDelta(t, 0.3*0.1+0.2*1.0+0.2*1.0, m.RiskAdjustedScore, 1e-9)
}

func TestSortinoRatio(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		rf      float64
		want    float64
	}{
		{name: "downside present", returns: []float64{0.3, -0.1}, rf: 0, want: 1.0},
		{name: "no downside above rf", returns: []float64{0.1, 0.2}, rf: 0.02, want: SortinoNoDownside},
		{name: "all at rf", returns: []float64{0.02, 0.02}, rf: 0.02, want: 0},
		{name: "empty", returns: nil, rf: 0.02, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calculateSortinoRatio(tt.returns, tt.rf), 1e-12)
		})
	}
}

func TestEquityCurveDrawdown(t *testing.T) {
	curve := NewEquityCurveFromProfits([]float64{10, -5, 20, -30})

	cumulative := make([]float64, len(curve))
	peaks := make([]float64, len(curve))
	drawdowns := make([]float64, len(curve))
	for i, p := range curve {
		cumulative[i], peaks[i], drawdowns[i] = p.Cumulative, p.Peak, p.Drawdown
	}
	assert.Equal(t, []float64{10, 5, 25, -5}, cumulative)
	assert.Equal(t, []float64{10, 10, 25, 25}, peaks)
	assert.Equal(t, []float64{0, 5, 0, 30}, drawdowns)
	assert.Equal(t, 30.0, curve.MaxDrawdown())

	running := curve.RunningMaxDrawdown()
	for i := 1; i < len(running); i++ {
		if running[i] < running[i-1] {
			t.Fatalf("running max drawdown decreased at %d: %v", i, running)
		}
	}
}

func TestEquityCurveOpeningLoss(t *testing.T) {
	curve := NewEquityCurveFromProfits([]float64{-5, 2})
	assert.Equal(t, 5.0, curve.MaxDrawdown())
	assert.Equal(t, 0.0, NewEquityCurveFromProfits(nil).MaxDrawdown())
}

func TestProfitFactorKinds(t *testing.T) {
	finite := NewProfitFactor(10, -5)
	assert.Equal(t, ProfitFactorFinite, finite.Kind)
	assert.Equal(t, 2.0, finite.Score())

	noLoss := NewProfitFactor(10, 0)
	assert.Equal(t, ProfitFactorNoLoss, noLoss.Kind)
	assert.Equal(t, NoLossScore, noLoss.Score())
	assert.True(t, math.IsInf(noLoss.rankValue(), 1))

	undefined := NewProfitFactor(0, 0)
	assert.Equal(t, ProfitFactorUndefined, undefined.Kind)
	assert.Equal(t, 0.0, undefined.Score())

	data, err := json.Marshal(map[string]ProfitFactor{"a": finite, "b": noLoss, "c": undefined})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":"no_loss","c":"undefined"}`, string(data))

	var decoded ProfitFactor
	require.NoError(t, json.Unmarshal([]byte(`"no_loss"`), &decoded))
	assert.Equal(t, noLoss, decoded)
	assert.Error(t, json.Unmarshal([]byte(`"infinite"`), &decoded))
}

func TestCalculateStrategyMetrics(t *testing.T) {
	results := []models.RealizedResult{
		roundResult(1, 10, 10),
		roundResult(2, 10, -5),
		roundResult(3, 10, 20),
		roundResult(4, 10, -30),
	}

	m := CalculateStrategyMetrics("Test", models.RiskTierMedium, results, 0.02)
	assert.Equal(t, 4, m.TotalRounds)
	assert.Equal(t, 40, m.TotalBets)
	assert.InDelta(t, -5, m.NetProfit, 1e-9)
	assert.InDelta(t, -0.125, m.ROI, 1e-9)
	assert.InDelta(t, 30, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 30, m.GrossProfit, 1e-9)
	assert.InDelta(t, 35, m.GrossLoss, 1e-9)
	assert.Equal(t, ProfitFactorFinite, m.ProfitFactor.Kind)
	assert.InDelta(t, 30.0/35.0, m.ProfitFactor.Value, 1e-9)
	assert.Equal(t, 2, m.ProfitableRounds)
	assert.Equal(t, 1, m.MaxWinStreak)
	assert.Equal(t, 1, m.MaxLossStreak)
	assert.InDelta(t, 20, m.LargestWin, 1e-9)
	assert.InDelta(t, -30, m.LargestLoss, 1e-9)

	// a round losing more than half its stake halves the tail term
	want := 0.5*0.5 + 0.3/(1+m.StdDevReturn) + 0.2*0.5
	assert.InDelta(t, want, m.ConsistencyScore, 1e-9)
}

func TestCalculateStrategyMetricsEmpty(t *testing.T) {
	m := CalculateStrategyMetrics("Empty", models.RiskTierLow, nil, 0.02)
	assert.Equal(t, 0, m.TotalRounds)
	assert.Equal(t, 0.0, m.SharpeRatio)
	assert.Equal(t, 0.0, m.SortinoRatio)
	assert.Equal(t, ProfitFactorUndefined, m.ProfitFactor.Kind)
	assert.False(t, math.IsNaN(m.RiskAdjustedScore))
}

func TestCalculateStrategyMetricsAllZeroRounds(t *testing.T) {
	results := []models.RealizedResult{roundResult(1, 0, 0), roundResult(2, 0, 0)}
	m := CalculateStrategyMetrics("Idle", models.RiskTierLow, results, 0.02)
	assert.Equal(t, 0.0, m.ROI)
	assert.Equal(t, 0.0, m.HitRate)
	assert.Equal(t, 0.0, m.SharpeRatio)
	assert.Equal(t, ProfitFactorUndefined, m.ProfitFactor.Kind)
	for _, v := range []float64{m.SortinoRatio, m.ConsistencyScore, m.RiskAdjustedScore} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestRankStrategiesTieKeepsInputOrder(t *testing.T) {
	metrics := []StrategyMetrics{
		{StrategyName: "A", RiskAdjustedScore: 0.5, ProfitFactor: NewProfitFactor(3, 1)},
		{StrategyName: "B", RiskAdjustedScore: 0.9, ProfitFactor: NewProfitFactor(4, 0)},
		{StrategyName: "C", RiskAdjustedScore: 0.5, ProfitFactor: NewProfitFactor(0, 0)},
	}
	rankings := RankStrategies(metrics)
	assert.Equal(t, []string{"B", "A", "C"}, rankings.ByRiskAdjusted)
	assert.Equal(t, []string{"B", "A", "C"}, rankings.ByProfitFactor)
	assert.Equal(t, []string{"A", "B", "C"}, rankings.ByROI)
	assert.Equal(t, "B", rankings.Top())
	assert.Equal(t, "", Rankings{}.Top())
}

func TestGenerateRecommendation(t *testing.T) {
	assert.Equal(t, RecommendationRecommended, GenerateRecommendation(StrategyMetrics{TotalBets: 5}, 0))
	assert.Equal(t, RecommendationAvoid, GenerateRecommendation(StrategyMetrics{}, 0))
	assert.Equal(t, RecommendationViable, GenerateRecommendation(StrategyMetrics{TotalBets: 5, ROI: 0.1, ConsistencyScore: 0.6}, 2))
	assert.Equal(t, RecommendationAvoid, GenerateRecommendation(StrategyMetrics{TotalBets: 5, ROI: 0.1, ConsistencyScore: 0.4}, 2))
}

func TestResolveWinners(t *testing.T) {
	winners, anomalies := ResolveWinners(3, []models.ArenaOutcome{
		{ArenaID: 1, WinnerID: 4},
		{ArenaID: 2, WinnerID: 1},
		{ArenaID: 1, WinnerID: 2},
		{ArenaID: 1, WinnerID: 4},
	})
	assert.Equal(t, map[int]int{1: 4, 2: 1}, winners)
	require.Len(t, anomalies, 1)
	assert.Equal(t, WinnerAnomaly{RoundID: 3, ArenaID: 1, Reported: []int{4, 2, 4}, Selected: 4}, anomalies[0])
}
