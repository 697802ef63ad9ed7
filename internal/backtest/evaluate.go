package backtest

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/arena-bets/internal/models"
)

// WinnerAnomaly records an arena for which more than one winner was reported
type WinnerAnomaly struct {
	RoundID  int   `json:"round_id" yaml:"round_id"`
	ArenaID  int   `json:"arena_id" yaml:"arena_id"`
	Reported []int `json:"reported" yaml:"reported"`
	Selected int   `json:"selected" yaml:"selected"`
}

// ResolveWinners maps each arena to its first reported winner. Arenas with
// conflicting reports yield exactly one anomaly each, in first-seen order.
func ResolveWinners(round int, outcomes []models.ArenaOutcome) (map[int]int, []WinnerAnomaly) {
	winners := make(map[int]int, len(outcomes))
	reported := make(map[int][]int, len(outcomes))
	var order []int
	for _, o := range outcomes {
		if _, ok := winners[o.ArenaID]; !ok {
			winners[o.ArenaID] = o.WinnerID
			order = append(order, o.ArenaID)
		}
		reported[o.ArenaID] = append(reported[o.ArenaID], o.WinnerID)
	}

	var anomalies []WinnerAnomaly
	for _, arena := range order {
		if len(reported[arena]) < 2 {
			continue
		}
		anomalies = append(anomalies, WinnerAnomaly{
			RoundID:  round,
			ArenaID:  arena,
			Reported: reported[arena],
			Selected: winners[arena],
		})
	}
	return winners, anomalies
}

// Evaluate settles a series against the round's winners at the given unit stake
func Evaluate(series models.BetSeries, winners map[int]int, stake decimal.Decimal) models.RealizedResult {
	return models.NewRealizedResult(series.RoundID, series.StrategyName, series.Bets, winners, stake)
}
