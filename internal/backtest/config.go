package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/arena-bets/internal/config"
	"github.com/yourusername/arena-bets/internal/strategy"
)

// BacktestConfig holds the settings of one backtest run
type BacktestConfig struct {
	StartRound           int
	EndRound             int
	UnitStake            decimal.Decimal
	RiskFreeRate         float64
	MinBetsRequired      int
	SeriesSize           int
	RelaxedBeamWidth     int
	ExhaustiveLimit      int
	MonteCarloIterations int
	MonteCarloSeed       int64
	OutputPath           string
	ReportFormats        []string
	Profiles             []strategy.Profile
}

// DefaultConfig returns the built-in tunables over an empty round window
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		UnitStake:            decimal.NewFromInt(1),
		RiskFreeRate:         0.02,
		MinBetsRequired:      strategy.DefaultMinBetsRequired,
		SeriesSize:           strategy.DefaultSeriesSize,
		RelaxedBeamWidth:     strategy.DefaultRelaxedBeamWidth,
		ExhaustiveLimit:      strategy.DefaultExhaustiveLimit,
		MonteCarloIterations: 1000,
		MonteCarloSeed:       42,
		OutputPath:           "reports",
		ReportFormats:        []string{"json"},
		Profiles:             strategy.DefaultProfiles(),
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.Config) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("config is required")
	}
	profiles, err := strategy.ProfilesFromConfig(cfg.Strategies)
	if err != nil {
		return BacktestConfig{}, err
	}

	b := cfg.Backtest
	bt := BacktestConfig{
		StartRound:           b.StartRound,
		EndRound:             b.EndRound,
		UnitStake:            decimal.NewFromFloat(b.UnitStake),
		RiskFreeRate:         b.RiskFreeRate,
		MinBetsRequired:      b.MinBetsRequired,
		SeriesSize:           b.SeriesSize,
		RelaxedBeamWidth:     b.RelaxedBeamWidth,
		ExhaustiveLimit:      b.ExhaustiveLimit,
		MonteCarloIterations: b.MonteCarloIterations,
		MonteCarloSeed:       b.MonteCarloSeed,
		OutputPath:           b.OutputPath,
		ReportFormats:        b.ReportFormats,
		Profiles:             profiles,
	}

	return bt, bt.Validate()
}

// WithRounds returns a copy of the config covering [start, end]
func (b BacktestConfig) WithRounds(start, end int) BacktestConfig {
	b.StartRound = start
	b.EndRound = end
	return b
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.StartRound > b.EndRound {
		return fmt.Errorf("start round must not exceed end round")
	}
	if !b.UnitStake.IsPositive() {
		return fmt.Errorf("unit stake must be positive")
	}
	if b.MinBetsRequired <= 0 {
		return fmt.Errorf("min bets required must be positive")
	}
	if b.SeriesSize < b.MinBetsRequired {
		return fmt.Errorf("series size cannot be smaller than min bets required")
	}
	if b.MonteCarloIterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	if len(b.Profiles) == 0 {
		return fmt.Errorf("at least one strategy profile is required")
	}
	for _, p := range b.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b BacktestConfig) assemblerConfig() strategy.AssemblerConfig {
	return strategy.AssemblerConfig{
		MinBetsRequired:  b.MinBetsRequired,
		SeriesSize:       b.SeriesSize,
		RelaxedBeamWidth: b.RelaxedBeamWidth,
		ExhaustiveLimit:  b.ExhaustiveLimit,
	}
}
