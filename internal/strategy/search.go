package strategy

import "github.com/yourusername/arena-bets/internal/models"

// DefaultExhaustiveLimit is the path count up to which the full tree is enumerated
const DefaultExhaustiveLimit = 4096

// ExhaustiveSearcher enumerates every combination of skip/pick across arenas
type ExhaustiveSearcher struct {
	minPicks int
	maxPicks int
	key      models.RankingKey
}

// NewExhaustiveSearcher creates a searcher that never prunes between arenas
func NewExhaustiveSearcher(minPicks, maxPicks int, key models.RankingKey) *ExhaustiveSearcher {
	return &ExhaustiveSearcher{minPicks: minPicks, maxPicks: maxPicks, key: key}
}

// Expand branches each partial into skip then every pick. Partials already at
// maxPicks only take the skip branch.
func (s *ExhaustiveSearcher) Expand(partial []models.Bet, arena int, picks []models.Pick) []models.Bet {
	return expand(partial, picks, s.maxPicks)
}

// Prune is the identity
func (s *ExhaustiveSearcher) Prune(candidates []models.Bet) []models.Bet {
	return candidates
}

// Finalize filters by size and stable-sorts by ranking key
func (s *ExhaustiveSearcher) Finalize(candidates []models.Bet) []models.Bet {
	return finalize(candidates, s.minPicks, s.maxPicks, s.key)
}

// BeamSearcher keeps only the best partial bets after every arena
type BeamSearcher struct {
	minPicks int
	maxPicks int
	width    int
	key      models.RankingKey
}

// NewBeamSearcher creates a searcher retaining the top width partials by key
func NewBeamSearcher(minPicks, maxPicks, width int, key models.RankingKey) *BeamSearcher {
	if width < 1 {
		width = 1
	}
	return &BeamSearcher{minPicks: minPicks, maxPicks: maxPicks, width: width, key: key}
}

// Expand branches each partial into skip then every pick
func (s *BeamSearcher) Expand(partial []models.Bet, arena int, picks []models.Pick) []models.Bet {
	return expand(partial, picks, s.maxPicks)
}

// Prune stable-sorts by ranking key and truncates to the beam width.
// Ties keep expansion order.
func (s *BeamSearcher) Prune(candidates []models.Bet) []models.Bet {
	sortByKey(candidates, s.key)
	if len(candidates) > s.width {
		candidates = candidates[:s.width]
	}
	return candidates
}

// Finalize filters by size and stable-sorts by ranking key
func (s *BeamSearcher) Finalize(candidates []models.Bet) []models.Bet {
	return finalize(candidates, s.minPicks, s.maxPicks, s.key)
}

// SelectSearcher chooses exhaustive enumeration when the profile's tree over
// arenaCount arenas has at most limit paths, otherwise beam search
func SelectSearcher(profile Profile, arenaCount, limit int) Searcher {
	if limit <= 0 {
		limit = DefaultExhaustiveLimit
	}
	paths := 1
	for i := 0; i < arenaCount && paths <= limit; i++ {
		paths *= profile.MaxCandidatesPerArena + 1
	}
	if paths <= limit {
		return NewExhaustiveSearcher(profile.MinPicks, profile.MaxPicks, profile.RankBy)
	}
	return NewBeamSearcher(profile.MinPicks, profile.MaxPicks, profile.BeamWidth, profile.RankBy)
}

func expand(partial []models.Bet, picks []models.Pick, maxPicks int) []models.Bet {
	out := make([]models.Bet, 0, len(partial)*(len(picks)+1))
	for _, bet := range partial {
		out = append(out, bet)
		if maxPicks > 0 && bet.Size() >= maxPicks {
			continue
		}
		for _, p := range picks {
			out = append(out, extend(bet, p))
		}
	}
	return out
}

func finalize(candidates []models.Bet, minPicks, maxPicks int, key models.RankingKey) []models.Bet {
	out := make([]models.Bet, 0, len(candidates))
	for _, bet := range candidates {
		if bet.Size() == 0 || bet.Size() < minPicks || (maxPicks > 0 && bet.Size() > maxPicks) {
			continue
		}
		out = append(out, bet)
	}
	sortByKey(out, key)
	return out
}
