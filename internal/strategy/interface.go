package strategy

import "github.com/yourusername/arena-bets/internal/models"

// Searcher builds candidate bets one arena at a time.
//
// Search starts from a single empty partial bet and, for every arena in
// ascending ID order, calls Expand followed by Prune. Finalize filters and
// orders the surviving candidates. Implementations must be deterministic:
// identical inputs yield identical, identically ordered output.
type Searcher interface {
	// Expand branches every partial bet into "skip this arena" followed by
	// one extension per pick, in pick order.
	Expand(partial []models.Bet, arena int, picks []models.Pick) []models.Bet
	// Prune bounds the working set between arenas.
	Prune(candidates []models.Bet) []models.Bet
	// Finalize keeps bets within the size bounds, ordered by ranking key.
	Finalize(candidates []models.Bet) []models.Bet
}

// Search drives a Searcher over the ranked picks of a round
func Search(s Searcher, ranked RankedPicks) []models.Bet {
	frontier := []models.Bet{NewBet(nil)}
	for _, arena := range ranked.Arenas {
		frontier = s.Prune(s.Expand(frontier, arena, ranked.Picks[arena]))
	}
	return s.Finalize(frontier)
}
