package backtest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yourusername/arena-bets/internal/models"
)

const monteCarloCheckEvery = 256

// MonteCarloConfig configures the bootstrap simulation
type MonteCarloConfig struct {
	Iterations int
	Seed       int64
}

// MonteCarloResult summarizes the distribution of resampled total net profit
type MonteCarloResult struct {
	Iterations          int                `json:"iterations" yaml:"iterations"`
	MeanNetProfit       float64            `json:"mean_net_profit" yaml:"mean_net_profit"`
	StdNetProfit        float64            `json:"std_net_profit" yaml:"std_net_profit"`
	Percentile5         float64            `json:"percentile_5" yaml:"percentile_5"`
	Percentile95        float64            `json:"percentile_95" yaml:"percentile_95"`
	ProbabilityOfProfit float64            `json:"probability_of_profit" yaml:"probability_of_profit"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals" yaml:"confidence_intervals"`
}

// RunMonteCarlo resamples a strategy's per-round net profits with replacement
// and reports the distribution of the window's total net profit.
func RunMonteCarlo(ctx context.Context, results []models.RealizedResult, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if len(results) == 0 {
		return MonteCarloResult{Iterations: cfg.Iterations}, nil
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	profits := make([]float64, len(results))
	for i, r := range results {
		profits[i] = r.NetProfitFloat()
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		if i%monteCarloCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return MonteCarloResult{}, err
			}
		}
		total := 0.0
		for range profits {
			total += profits[rng.Intn(len(profits))]
		}
		distribution[i] = total
	}
	sort.Float64s(distribution)

	mean, std := meanStd(distribution)
	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		MeanNetProfit:       mean,
		StdNetProfit:        std,
		Percentile5:         percentile(distribution, 0.05),
		Percentile95:        percentile(distribution, 0.95),
		ProbabilityOfProfit: probabilityAbove(distribution, 0),
		ConfidenceIntervals: CalculateConfidenceIntervals(distribution, []float64{0.9, 0.95, 0.99}),
	}, nil
}

// CalculateConfidenceIntervals returns the width of each central interval of a sorted distribution
func CalculateConfidenceIntervals(sorted []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64, len(levels))
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		results[formatPercent(level)] = percentile(sorted, 1.0-p) - percentile(sorted, p)
	}
	return results
}

func meanStd(values []float64) (float64, float64) {
	return average(values), stddev(values)
}

// percentile expects sorted input
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
