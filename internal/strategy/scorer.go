package strategy

import (
	"sort"

	"github.com/yourusername/arena-bets/internal/models"
)

// ScoreBet builds a bet from picks: the combined probability and total payout
// are the products over all picks, and EV = probability*payout - 1.
// The payout product saturates at math.MaxInt64.
// An empty pick list scores as probability 1, payout 1, EV 0.
func ScoreBet(picks []models.Pick) models.Bet {
	bet := models.Bet{
		Picks:               append([]models.Pick(nil), picks...),
		CombinedProbability: 1,
		TotalPayout:         1,
	}
	for _, p := range picks {
		bet.CombinedProbability *= p.WinProbability
		bet.TotalPayout = models.MulPayout(bet.TotalPayout, p.Payout)
	}
	bet.ExpectedValue = bet.CombinedProbability*float64(bet.TotalPayout) - 1
	return bet
}

// NewBet scores picks after ordering them by arena
func NewBet(picks []models.Pick) models.Bet {
	sorted := append([]models.Pick(nil), picks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ArenaID < sorted[j].ArenaID
	})
	return ScoreBet(sorted)
}

// extend returns a new bet with pick appended. The partial's pick slice is
// never shared with the result.
func extend(partial models.Bet, pick models.Pick) models.Bet {
	picks := make([]models.Pick, len(partial.Picks)+1)
	copy(picks, partial.Picks)
	picks[len(partial.Picks)] = pick

	bet := models.Bet{
		Picks:               picks,
		CombinedProbability: partial.CombinedProbability * pick.WinProbability,
		TotalPayout:         models.MulPayout(partial.TotalPayout, pick.Payout),
	}
	bet.ExpectedValue = bet.CombinedProbability*float64(bet.TotalPayout) - 1
	return bet
}

// sortByKey stable-sorts bets by the ranking key, highest first
func sortByKey(bets []models.Bet, key models.RankingKey) {
	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].RankValue(key) > bets[j].RankValue(key)
	})
}
