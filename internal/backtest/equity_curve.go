package backtest

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/yourusername/arena-bets/internal/models"
)

// EquityPoint is the cumulative position of a strategy after one round
type EquityPoint struct {
	RoundID    int     `json:"round_id" yaml:"round_id"`
	NetProfit  float64 `json:"net_profit" yaml:"net_profit"`
	Cumulative float64 `json:"cumulative" yaml:"cumulative"`
	Peak       float64 `json:"peak" yaml:"peak"`
	Drawdown   float64 `json:"drawdown" yaml:"drawdown"`
}

// EquityCurve is a strategy's cumulative profit path in round order
type EquityCurve []EquityPoint

// NewEquityCurve builds the curve from a strategy's ordered round results
func NewEquityCurve(results []models.RealizedResult) EquityCurve {
	profits := make([]float64, len(results))
	for i, r := range results {
		profits[i] = r.NetProfitFloat()
	}
	curve := NewEquityCurveFromProfits(profits)
	for i, r := range results {
		curve[i].RoundID = r.RoundID
	}
	return curve
}

// NewEquityCurveFromProfits builds the curve from per-round net profits.
// The peak starts at zero, so an opening loss is already a drawdown.
func NewEquityCurveFromProfits(profits []float64) EquityCurve {
	curve := make(EquityCurve, len(profits))
	cumulative, peak := 0.0, 0.0
	for i, p := range profits {
		cumulative += p
		if cumulative > peak {
			peak = cumulative
		}
		curve[i] = EquityPoint{
			RoundID:    i + 1,
			NetProfit:  p,
			Cumulative: cumulative,
			Peak:       peak,
			Drawdown:   peak - cumulative,
		}
	}
	return curve
}

// MaxDrawdown returns the largest peak-to-trough decline
func (e EquityCurve) MaxDrawdown() float64 {
	running := e.RunningMaxDrawdown()
	if len(running) == 0 {
		return 0
	}
	return running[len(running)-1]
}

// RunningMaxDrawdown returns the maximum drawdown observed up to each point
func (e EquityCurve) RunningMaxDrawdown() []float64 {
	out := make([]float64, len(e))
	max := 0.0
	for i, p := range e {
		if p.Drawdown > max {
			max = p.Drawdown
		}
		out[i] = max
	}
	return out
}

// WriteCSV writes the curve as CSV rows tagged with the strategy name
func (e EquityCurve) WriteCSV(w *csv.Writer, strategyName string) error {
	for _, p := range e {
		record := []string{
			strategyName,
			strconv.Itoa(p.RoundID),
			formatFloat(p.NetProfit),
			formatFloat(p.Cumulative),
			formatFloat(p.Peak),
			formatFloat(p.Drawdown),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteEquityCurves writes several strategies' curves, in the given order, as one CSV document
func WriteEquityCurves(out io.Writer, order []string, curves map[string]EquityCurve) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"strategy", "round_id", "net_profit", "cumulative", "peak", "drawdown"}); err != nil {
		return err
	}
	for _, name := range order {
		if err := curves[name].WriteCSV(w, name); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
