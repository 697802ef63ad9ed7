package models

import "math"

// Probability and payout bounds applied to every incoming prediction
const (
	MinWinProbability = 1e-6
	MaxWinProbability = 1 - 1e-6
	MinPayout         = 2
)

// Prediction is the model estimate for one competitor in one arena of a round
type Prediction struct {
	RoundID        int     `db:"round_id" json:"round_id" yaml:"round_id"`
	ArenaID        int     `db:"arena_id" json:"arena_id" yaml:"arena_id"`
	CompetitorID   int     `db:"competitor_id" json:"competitor_id" yaml:"competitor_id"`
	WinProbability float64 `db:"win_probability" json:"win_probability" yaml:"win_probability"`
	Payout         int     `db:"payout" json:"payout" yaml:"payout"`
}

// Normalize clamps the probability into the open unit interval and the payout to its floor
func (p Prediction) Normalize() Prediction {
	switch {
	case math.IsNaN(p.WinProbability) || p.WinProbability < MinWinProbability:
		p.WinProbability = MinWinProbability
	case p.WinProbability > MaxWinProbability:
		p.WinProbability = MaxWinProbability
	}
	if p.Payout < MinPayout {
		p.Payout = MinPayout
	}
	return p
}

// ExpectedValue returns p*payout-1 for a single-leg wager on this competitor
func (p Prediction) ExpectedValue() float64 {
	return p.WinProbability*float64(p.Payout) - 1
}

// ToPick converts the normalized prediction into a pick
func (p Prediction) ToPick() Pick {
	n := p.Normalize()
	return Pick{
		ArenaID:        n.ArenaID,
		CompetitorID:   n.CompetitorID,
		WinProbability: n.WinProbability,
		Payout:         n.Payout,
	}
}

type predictionKey struct {
	round, arena, competitor int
}

// UniquePredictions keeps the first prediction for every (round, arena, competitor)
// and reports how many duplicates were dropped. Input order is preserved.
func UniquePredictions(preds []Prediction) ([]Prediction, int) {
	seen := make(map[predictionKey]struct{}, len(preds))
	out := make([]Prediction, 0, len(preds))
	for _, p := range preds {
		k := predictionKey{p.RoundID, p.ArenaID, p.CompetitorID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out, len(preds) - len(out)
}

// ArenaOutcome is one reported winner for an arena. An arena may appear more
// than once when the outcome store reports conflicting winners.
type ArenaOutcome struct {
	RoundID  int `db:"round_id" json:"round_id"`
	ArenaID  int `db:"arena_id" json:"arena_id"`
	WinnerID int `db:"winner_id" json:"winner_id"`
}
