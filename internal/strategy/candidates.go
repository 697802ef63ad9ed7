package strategy

import (
	"sort"

	"github.com/yourusername/arena-bets/internal/models"
)

// RankedPicks holds a round's eligible picks per arena, best first.
// Arenas lists every arena seen in the predictions in ascending order, including
// arenas whose picks were all filtered out.
type RankedPicks struct {
	Arenas []int
	Picks  map[int][]models.Pick
}

// RankPicks applies the profile's filter, orders each arena's picks by the
// profile's ranking key (stable, highest first) and keeps the top
// MaxCandidatesPerArena.
func RankPicks(preds []models.Prediction, profile Profile) RankedPicks {
	ranked := RankedPicks{Picks: make(map[int][]models.Pick)}
	for _, pred := range preds {
		pick := pred.ToPick()
		if _, seen := ranked.Picks[pick.ArenaID]; !seen {
			ranked.Arenas = append(ranked.Arenas, pick.ArenaID)
			ranked.Picks[pick.ArenaID] = nil
		}
		if profile.Accepts(pick) {
			ranked.Picks[pick.ArenaID] = append(ranked.Picks[pick.ArenaID], pick)
		}
	}
	sort.Ints(ranked.Arenas)

	for arena, picks := range ranked.Picks {
		sort.SliceStable(picks, func(i, j int) bool {
			return picks[i].RankValue(profile.RankBy) > picks[j].RankValue(profile.RankBy)
		})
		if profile.MaxCandidatesPerArena > 0 && len(picks) > profile.MaxCandidatesPerArena {
			picks = picks[:profile.MaxCandidatesPerArena]
		}
		ranked.Picks[arena] = picks
	}
	return ranked
}
