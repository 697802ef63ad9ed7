package backtest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ProfitFactorKind tags how a profit factor was derived
type ProfitFactorKind string

const (
	// ProfitFactorFinite is gross profit over gross loss
	ProfitFactorFinite ProfitFactorKind = "finite"
	// ProfitFactorNoLoss means profit was made without any losing round
	ProfitFactorNoLoss ProfitFactorKind = "no_loss"
	// ProfitFactorUndefined means there was neither profit nor loss
	ProfitFactorUndefined ProfitFactorKind = "undefined"
)

// NoLossScore is the score credited to a no-loss profit factor. It saturates
// the profit factor term of the risk-adjusted score.
const NoLossScore = 5.0

// ProfitFactor is gross profit divided by gross loss, tagged for the degenerate cases
type ProfitFactor struct {
	Value float64
	Kind  ProfitFactorKind
}

// NewProfitFactor builds a profit factor from gross profit and the magnitude of gross loss
func NewProfitFactor(grossProfit, grossLoss float64) ProfitFactor {
	grossLoss = math.Abs(grossLoss)
	switch {
	case grossLoss == 0 && grossProfit > 0:
		return ProfitFactor{Kind: ProfitFactorNoLoss}
	case grossLoss == 0:
		return ProfitFactor{Kind: ProfitFactorUndefined}
	default:
		return ProfitFactor{Value: grossProfit / grossLoss, Kind: ProfitFactorFinite}
	}
}

// Score returns the value used in composite scores
func (p ProfitFactor) Score() float64 {
	switch p.Kind {
	case ProfitFactorNoLoss:
		return NoLossScore
	case ProfitFactorFinite:
		return p.Value
	default:
		return 0
	}
}

// rankValue orders no-loss above every finite value
func (p ProfitFactor) rankValue() float64 {
	if p.Kind == ProfitFactorNoLoss {
		return math.Inf(1)
	}
	return p.Score()
}

func (p ProfitFactor) String() string {
	if p.Kind == ProfitFactorFinite {
		return strconv.FormatFloat(p.Value, 'f', 2, 64)
	}
	return string(p.Kind)
}

// MarshalJSON renders finite values as numbers and the degenerate kinds as strings
func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if p.Kind == ProfitFactorFinite {
		return json.Marshal(p.Value)
	}
	return json.Marshal(string(p.Kind))
}

// UnmarshalJSON accepts either a number or one of the degenerate kinds
func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*p = ProfitFactor{Value: value, Kind: ProfitFactorFinite}
		return nil
	}
	var kind string
	if err := json.Unmarshal(data, &kind); err != nil {
		return fmt.Errorf("invalid profit factor: %w", err)
	}
	switch ProfitFactorKind(kind) {
	case ProfitFactorNoLoss, ProfitFactorUndefined:
		*p = ProfitFactor{Kind: ProfitFactorKind(kind)}
		return nil
	default:
		return fmt.Errorf("invalid profit factor kind %q", kind)
	}
}

// MarshalYAML mirrors MarshalJSON
func (p ProfitFactor) MarshalYAML() (interface{}, error) {
	if p.Kind == ProfitFactorFinite {
		return p.Value, nil
	}
	return string(p.Kind), nil
}

func (p ProfitFactor) csvValue() string {
	if p.Kind == ProfitFactorFinite {
		return strconv.FormatFloat(p.Value, 'f', 6, 64)
	}
	return string(p.Kind)
}
