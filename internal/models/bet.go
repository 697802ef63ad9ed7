package models

import (
	"math"
	"math/bits"
	"sort"
	"strconv"
	"strings"
)

// RiskTier classifies a strategy profile by how much variance it accepts
type RiskTier string

const (
	RiskTierLow        RiskTier = "LOW"
	RiskTierMedium     RiskTier = "MEDIUM"
	RiskTierMediumHigh RiskTier = "MEDIUM_HIGH"
	RiskTierHigh       RiskTier = "HIGH"
	RiskTierVeryHigh   RiskTier = "VERY_HIGH"
)

// RankingKey selects the value bets are ordered by
type RankingKey string

const (
	RankByEV          RankingKey = "EV"
	RankByTotalPayout RankingKey = "TOTAL_PAYOUT"
)

// Pick is a single competitor chosen from one arena
type Pick struct {
	ArenaID        int     `json:"arena_id" yaml:"arena_id"`
	CompetitorID   int     `json:"competitor_id" yaml:"competitor_id"`
	WinProbability float64 `json:"win_probability" yaml:"win_probability"`
	Payout         int     `json:"payout" yaml:"payout"`
}

// EV returns the expected value of backing this pick alone
func (p Pick) EV() float64 {
	return p.WinProbability*float64(p.Payout) - 1
}

// RankValue returns the pick's value under the given ranking key
func (p Pick) RankValue(key RankingKey) float64 {
	if key == RankByTotalPayout {
		return float64(p.Payout)
	}
	return p.EV()
}

// Bet is a multi-leg wager holding at most one pick per arena, ordered by arena
type Bet struct {
	Picks               []Pick  `json:"picks" yaml:"picks"`
	CombinedProbability float64 `json:"combined_probability" yaml:"combined_probability"`
	TotalPayout         int64   `json:"total_payout" yaml:"total_payout"`
	ExpectedValue       float64 `json:"expected_value" yaml:"expected_value"`
}

// MulPayout multiplies a running payout by one more leg, saturating at
// math.MaxInt64 instead of wrapping
func MulPayout(total int64, payout int) int64 {
	if total <= 0 || payout <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(total), uint64(payout))
	if hi != 0 || lo > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(lo)
}

// Size returns the number of picks
func (b Bet) Size() int {
	return len(b.Picks)
}

// ArenasCovered returns the arena IDs the bet has a pick in
func (b Bet) ArenasCovered() []int {
	arenas := make([]int, len(b.Picks))
	for i, p := range b.Picks {
		arenas[i] = p.ArenaID
	}
	return arenas
}

// RankValue returns the bet's value under the given ranking key
func (b Bet) RankValue(key RankingKey) float64 {
	if key == RankByTotalPayout {
		return float64(b.TotalPayout)
	}
	return b.ExpectedValue
}

// Signature identifies a bet by its picks: sorted "arena:competitor" pairs joined by commas
func (b Bet) Signature() string {
	pairs := make([]string, len(b.Picks))
	for i, p := range b.Picks {
		pairs[i] = strconv.Itoa(p.ArenaID) + ":" + strconv.Itoa(p.CompetitorID)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// Wins reports whether every pick names its arena's winner.
// An arena with no known winner counts as a loss.
func (b Bet) Wins(winners map[int]int) bool {
	if len(b.Picks) == 0 {
		return false
	}
	for _, p := range b.Picks {
		w, ok := winners[p.ArenaID]
		if !ok || w != p.CompetitorID {
			return false
		}
	}
	return true
}

// BetSeries is the set of bets one strategy recommends for one round
type BetSeries struct {
	RoundID      int      `json:"round_id" yaml:"round_id"`
	StrategyName string   `json:"strategy_name" yaml:"strategy_name"`
	RiskTier     RiskTier `json:"risk_tier" yaml:"risk_tier"`
	Bets         []Bet    `json:"bets" yaml:"bets"`
	Description  string   `json:"description" yaml:"description"`
	Underfilled  bool     `json:"underfilled" yaml:"underfilled"`
}

// Len returns the number of bets in the series
func (s BetSeries) Len() int {
	return len(s.Bets)
}
