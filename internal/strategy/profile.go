package strategy

import (
	"fmt"

	"github.com/yourusername/arena-bets/internal/config"
	"github.com/yourusername/arena-bets/internal/models"
)

// FilterKind selects how a profile screens picks before ranking
type FilterKind string

const (
	FilterMinProbability FilterKind = "MIN_PROBABILITY"
	FilterPositiveEV     FilterKind = "POSITIVE_EV"
	FilterNone           FilterKind = "NONE"
)

// Profile is a named risk tier with its pick filter, search bounds and ranking key
type Profile struct {
	Name                  string            `json:"name" yaml:"name"`
	Tier                  models.RiskTier   `json:"tier" yaml:"tier"`
	Filter                FilterKind        `json:"filter" yaml:"filter"`
	MinWinProbability     float64           `json:"min_win_probability" yaml:"min_win_probability"`
	MaxCandidatesPerArena int               `json:"max_candidates_per_arena" yaml:"max_candidates_per_arena"`
	MinPicks              int               `json:"min_picks" yaml:"min_picks"`
	MaxPicks              int               `json:"max_picks" yaml:"max_picks"`
	BeamWidth             int               `json:"beam_width" yaml:"beam_width"`
	RankBy                models.RankingKey `json:"rank_by" yaml:"rank_by"`
	RelaxedMinPicks       int               `json:"relaxed_min_picks" yaml:"relaxed_min_picks"`
	RelaxedMaxPicks       int               `json:"relaxed_max_picks" yaml:"relaxed_max_picks"`
	Description           string            `json:"description" yaml:"description"`
}

// DefaultProfiles returns the five built-in tiers, lowest risk first.
// HighRisk ranks by total payout rather than EV.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name: "Conservative", Tier: models.RiskTierLow,
			Filter: FilterMinProbability, MinWinProbability: 0.5,
			MaxCandidatesPerArena: 5, MinPicks: 1, MaxPicks: 5, BeamWidth: 50,
			RankBy: models.RankByEV, RelaxedMinPicks: 1, RelaxedMaxPicks: 3,
			Description: "Favourites only; short bets with high hit rate",
		},
		{
			Name: "Balanced", Tier: models.RiskTierMedium,
			Filter: FilterMinProbability, MinWinProbability: 0.25,
			MaxCandidatesPerArena: 5, MinPicks: 1, MaxPicks: 5, BeamWidth: 100,
			RankBy: models.RankByEV, RelaxedMinPicks: 1, RelaxedMaxPicks: 4,
			Description: "Likely contenders ranked by expected value",
		},
		{
			Name: "Moderate", Tier: models.RiskTierMediumHigh,
			Filter: FilterMinProbability, MinWinProbability: 0.15,
			MaxCandidatesPerArena: 5, MinPicks: 1, MaxPicks: 5, BeamWidth: 150,
			RankBy: models.RankByEV, RelaxedMinPicks: 2, RelaxedMaxPicks: 5,
			Description: "Wider field of contenders ranked by expected value",
		},
		{
			Name: "Aggressive", Tier: models.RiskTierHigh,
			Filter: FilterPositiveEV, MinWinProbability: 0,
			MaxCandidatesPerArena: 4, MinPicks: 1, MaxPicks: 5, BeamWidth: 200,
			RankBy: models.RankByEV, RelaxedMinPicks: 3, RelaxedMaxPicks: 5,
			Description: "Positive expected value picks regardless of probability",
		},
		{
			Name: "HighRisk", Tier: models.RiskTierVeryHigh,
			Filter: FilterNone, MinWinProbability: 0,
			MaxCandidatesPerArena: 3, MinPicks: 1, MaxPicks: 5, BeamWidth: 100,
			RankBy: models.RankByTotalPayout, RelaxedMinPicks: 4, RelaxedMaxPicks: 5,
			Description: "Long shots ranked by total payout",
		},
	}
}

// Accepts reports whether the pick passes the profile filter
func (p Profile) Accepts(pick models.Pick) bool {
	switch p.Filter {
	case FilterMinProbability:
		return pick.WinProbability > p.MinWinProbability
	case FilterPositiveEV:
		return pick.EV() > 0
	default:
		return true
	}
}

// Validate checks the profile's bounds
func (p Profile) Validate() error {
	if p.Name == "" {
		return models.ErrStrategyNameRequired
	}
	if p.MinPicks < 1 || p.MaxPicks < p.MinPicks {
		return fmt.Errorf("profile %s: invalid size bounds [%d,%d]", p.Name, p.MinPicks, p.MaxPicks)
	}
	if p.RelaxedMinPicks < 1 || p.RelaxedMaxPicks < p.RelaxedMinPicks {
		return fmt.Errorf("profile %s: invalid relaxed size bounds [%d,%d]", p.Name, p.RelaxedMinPicks, p.RelaxedMaxPicks)
	}
	if p.MaxCandidatesPerArena < 1 {
		return fmt.Errorf("profile %s: max candidates per arena must be positive", p.Name)
	}
	if p.BeamWidth < 1 {
		return fmt.Errorf("profile %s: beam width must be positive", p.Name)
	}
	if p.RankBy != models.RankByEV && p.RankBy != models.RankByTotalPayout {
		return fmt.Errorf("profile %s: unknown ranking key %q", p.Name, p.RankBy)
	}
	return nil
}

// ProfilesFromConfig applies configured overrides to the default profiles.
// Zero-valued override fields keep the default.
func ProfilesFromConfig(overrides []config.ProfileConfig) ([]Profile, error) {
	profiles := DefaultProfiles()
	index := make(map[string]int, len(profiles))
	for i, p := range profiles {
		index[p.Name] = i
	}

	for _, o := range overrides {
		i, ok := index[o.Name]
		if !ok {
			return nil, fmt.Errorf("unknown strategy profile %q", o.Name)
		}
		p := &profiles[i]
		if o.MinWinProbability > 0 {
			p.MinWinProbability = o.MinWinProbability
		}
		if o.MaxCandidatesPerArena > 0 {
			p.MaxCandidatesPerArena = o.MaxCandidatesPerArena
		}
		if o.MinPicks > 0 {
			p.MinPicks = o.MinPicks
		}
		if o.MaxPicks > 0 {
			p.MaxPicks = o.MaxPicks
		}
		if o.BeamWidth > 0 {
			p.BeamWidth = o.BeamWidth
		}
		if o.RelaxedMinPicks > 0 {
			p.RelaxedMinPicks = o.RelaxedMinPicks
		}
		if o.RelaxedMaxPicks > 0 {
			p.RelaxedMaxPicks = o.RelaxedMaxPicks
		}
	}

	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}
