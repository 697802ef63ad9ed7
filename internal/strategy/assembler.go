package strategy

import "github.com/yourusername/arena-bets/internal/models"

// Series defaults
const (
	DefaultMinBetsRequired  = 10
	DefaultSeriesSize       = 10
	DefaultRelaxedBeamWidth = 500
)

// AssemblerConfig bounds the size of assembled series
type AssemblerConfig struct {
	MinBetsRequired  int
	SeriesSize       int
	RelaxedBeamWidth int
	ExhaustiveLimit  int
}

// Assembler turns a profile's search results into a deduplicated series,
// topping it up with a relaxed beam search when it falls short.
type Assembler struct {
	cfg AssemblerConfig
}

// NewAssembler creates an assembler, filling zero settings with defaults
func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.MinBetsRequired <= 0 {
		cfg.MinBetsRequired = DefaultMinBetsRequired
	}
	if cfg.SeriesSize <= 0 {
		cfg.SeriesSize = DefaultSeriesSize
	}
	if cfg.SeriesSize < cfg.MinBetsRequired {
		cfg.SeriesSize = cfg.MinBetsRequired
	}
	if cfg.RelaxedBeamWidth <= 0 {
		cfg.RelaxedBeamWidth = DefaultRelaxedBeamWidth
	}
	if cfg.ExhaustiveLimit <= 0 {
		cfg.ExhaustiveLimit = DefaultExhaustiveLimit
	}
	return &Assembler{cfg: cfg}
}

// Assemble builds the series for one profile and round. A series that cannot
// reach MinBetsRequired is returned short with Underfilled set.
func (a *Assembler) Assemble(round int, profile Profile, ranked RankedPicks) models.BetSeries {
	searcher := SelectSearcher(profile, len(ranked.Arenas), a.cfg.ExhaustiveLimit)
	bets := Dedup(Search(searcher, ranked))
	sortByKey(bets, profile.RankBy)
	if len(bets) > a.cfg.SeriesSize {
		bets = bets[:a.cfg.SeriesSize]
	}

	if len(bets) < a.cfg.MinBetsRequired {
		relaxed := NewBeamSearcher(profile.RelaxedMinPicks, profile.RelaxedMaxPicks, a.cfg.RelaxedBeamWidth, profile.RankBy)
		bets = topUp(bets, Search(relaxed, ranked), a.cfg.MinBetsRequired)
		sortByKey(bets, profile.RankBy)
	}

	return models.BetSeries{
		RoundID:      round,
		StrategyName: profile.Name,
		RiskTier:     profile.Tier,
		Bets:         bets,
		Description:  profile.Description,
		Underfilled:  len(bets) < a.cfg.MinBetsRequired,
	}
}

// Signature returns the bet's identity used for deduplication
func Signature(b models.Bet) string {
	return b.Signature()
}

// Dedup keeps the first bet for every signature, preserving order
func Dedup(bets []models.Bet) []models.Bet {
	seen := make(map[string]struct{}, len(bets))
	out := make([]models.Bet, 0, len(bets))
	for _, b := range bets {
		sig := Signature(b)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, b)
	}
	return out
}

// topUp appends unseen candidates in order until the series holds target bets
func topUp(bets, candidates []models.Bet, target int) []models.Bet {
	seen := make(map[string]struct{}, len(bets))
	for _, b := range bets {
		seen[Signature(b)] = struct{}{}
	}
	for _, c := range candidates {
		if len(bets) >= target {
			break
		}
		sig := Signature(c)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		bets = append(bets, c)
	}
	return bets
}
