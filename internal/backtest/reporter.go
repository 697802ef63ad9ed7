package backtest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/arena-bets/internal/models"
)

const reportTimestampLayout = "20060102_150405"

// StrategyReport is one strategy's section of a run report
type StrategyReport struct {
	Metrics        StrategyMetrics   `json:"metrics" yaml:"metrics"`
	MonteCarlo     *MonteCarloResult `json:"monte_carlo,omitempty" yaml:"monte_carlo,omitempty"`
	Recommendation string            `json:"recommendation" yaml:"recommendation"`
	Description    string            `json:"description" yaml:"description"`
}

// Report is the serializable summary of a backtest run
type Report struct {
	RunID                string                 `json:"run_id" yaml:"run_id"`
	GeneratedAt          time.Time              `json:"generated_at" yaml:"generated_at"`
	StartRound           int                    `json:"start_round" yaml:"start_round"`
	EndRound             int                    `json:"end_round" yaml:"end_round"`
	RoundsProcessed      int                    `json:"rounds_processed" yaml:"rounds_processed"`
	RoundsSkipped        int                    `json:"rounds_skipped" yaml:"rounds_skipped"`
	Anomalies            []WinnerAnomaly        `json:"anomalies" yaml:"anomalies"`
	DuplicatePredictions int                    `json:"duplicate_predictions" yaml:"duplicate_predictions"`
	UnitStake            float64                `json:"unit_stake" yaml:"unit_stake"`
	RiskFreeRate         float64                `json:"risk_free_rate" yaml:"risk_free_rate"`
	Strategies           []StrategyReport       `json:"strategies" yaml:"strategies"`
	Rankings             Rankings               `json:"rankings" yaml:"rankings"`
	TopStrategy          string                 `json:"top_strategy" yaml:"top_strategy"`
	EquityCurves         map[string]EquityCurve `json:"-" yaml:"-"`
}

// Aggregate computes per-strategy metrics, rankings, and Monte Carlo summaries
// from a finished run. Strategies are folded in profile order.
func Aggregate(ctx context.Context, state *BacktestState, cfg BacktestConfig) (*Report, error) {
	report := &Report{
		RunID:                state.RunID.String(),
		GeneratedAt:          time.Now().UTC(),
		StartRound:           cfg.StartRound,
		EndRound:             cfg.EndRound,
		RoundsProcessed:      len(state.RoundsProcessed),
		RoundsSkipped:        len(state.RoundsSkipped),
		Anomalies:            state.Anomalies,
		DuplicatePredictions: state.DuplicatePredictions,
		UnitStake:            cfg.UnitStake.InexactFloat64(),
		RiskFreeRate:         cfg.RiskFreeRate,
		EquityCurves:         make(map[string]EquityCurve, len(state.Profiles)),
	}

	all := make([]StrategyMetrics, 0, len(state.Profiles))
	for _, profile := range state.Profiles {
		results := state.Results[profile.Name]
		m := CalculateStrategyMetrics(profile.Name, profile.Tier, results, cfg.RiskFreeRate)
		m.UnderfilledSeries = state.Underfilled[profile.Name]
		all = append(all, m)

		sr := StrategyReport{Metrics: m, Description: profile.Description}
		if cfg.MonteCarloIterations > 0 {
			mc, err := RunMonteCarlo(ctx, results, MonteCarloConfig{Iterations: cfg.MonteCarloIterations, Seed: cfg.MonteCarloSeed})
			if err != nil {
				return nil, fmt.Errorf("monte carlo for %s: %w", profile.Name, err)
			}
			sr.MonteCarlo = &mc
		}
		report.Strategies = append(report.Strategies, sr)
		report.EquityCurves[profile.Name] = NewEquityCurve(results)
	}

	report.Rankings = RankStrategies(all)
	report.TopStrategy = report.Rankings.Top()
	rank := make(map[string]int, len(report.Rankings.ByRiskAdjusted))
	for i, name := range report.Rankings.ByRiskAdjusted {
		rank[name] = i
	}
	for i := range report.Strategies {
		m := report.Strategies[i].Metrics
		report.Strategies[i].Recommendation = GenerateRecommendation(m, rank[m.StrategyName])
	}
	return report, nil
}

// StrategyOrder returns strategy names in report order
func (r *Report) StrategyOrder() []string {
	names := make([]string, len(r.Strategies))
	for i, s := range r.Strategies {
		names[i] = s.Metrics.StrategyName
	}
	return names
}

// GenerateConsoleReport renders the run summary and ranking table for terminal output
func GenerateConsoleReport(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "Backtest Report %s\n", report.RunID)
	fmt.Fprintf(w, "Rounds %d-%d: %d processed, %d skipped, %d winner anomalies\n",
		report.StartRound, report.EndRound, report.RoundsProcessed, report.RoundsSkipped, len(report.Anomalies))

	byName := make(map[string]StrategyReport, len(report.Strategies))
	for _, s := range report.Strategies {
		byName[s.Metrics.StrategyName] = s
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Strategy", "Tier", "Bets", "Hit", "ROI", "Sharpe", "Sortino", "MaxDD", "PF", "Consistency", "Score", "Verdict")
	for i, name := range report.Rankings.ByRiskAdjusted {
		s := byName[name]
		m := s.Metrics
		if err := table.Append(
			strconv.Itoa(i+1),
			m.StrategyName,
			string(m.RiskTier),
			strconv.Itoa(m.TotalBets),
			fmt.Sprintf("%.1f%%", m.HitRate*100),
			fmt.Sprintf("%.2f%%", m.ROI*100),
			fmt.Sprintf("%.3f", m.SharpeRatio),
			fmt.Sprintf("%.3f", m.SortinoRatio),
			fmt.Sprintf("%.2f", m.MaxDrawdown),
			m.ProfitFactor.String(),
			fmt.Sprintf("%.3f", m.ConsistencyScore),
			fmt.Sprintf("%.3f", m.RiskAdjustedScore),
			s.Recommendation,
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "By ROI: %s\n", strings.Join(report.Rankings.ByROI, " > "))
	fmt.Fprintf(w, "By Sharpe: %s\n", strings.Join(report.Rankings.BySharpe, " > "))
	fmt.Fprintf(w, "By Consistency: %s\n", strings.Join(report.Rankings.ByConsistency, " > "))
	fmt.Fprintf(w, "By Profit Factor: %s\n", strings.Join(report.Rankings.ByProfitFactor, " > "))
	return nil
}

// ReportFileName returns backtest_report_<YYYYMMDD_HHMMSS>.<ext>
func ReportFileName(t time.Time, ext string) string {
	return fmt.Sprintf("backtest_report_%s.%s", t.UTC().Format(reportTimestampLayout), ext)
}

// ReportWriter writes reports into an output directory
type ReportWriter struct {
	outputDir string
	now       func() time.Time
}

// NewReportWriter creates a writer targeting dir
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{outputDir: dir, now: time.Now}
}

// Write encodes the report in the given format and returns the file path
func (w *ReportWriter) Write(report *Report, format string) (string, error) {
	format = strings.ToLower(format)
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(report)
	case "csv":
		data, err = encodeCSV(report)
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("encode %s report: %w", format, err)
	}
	return w.writeFile(ReportFileName(w.now(), format), data)
}

// WriteAll writes the report in every format, plus the equity curves
func (w *ReportWriter) WriteAll(report *Report, formats []string) ([]string, error) {
	paths := make([]string, 0, len(formats)+1)
	for _, format := range formats {
		path, err := w.Write(report, format)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	path, err := w.WriteEquityCurves(report)
	if err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

// WriteEquityCurves writes every strategy's equity curve to one CSV file
func (w *ReportWriter) WriteEquityCurves(report *Report) (string, error) {
	var buf bytes.Buffer
	if err := WriteEquityCurves(&buf, report.StrategyOrder(), report.EquityCurves); err != nil {
		return "", err
	}
	name := fmt.Sprintf("equity_curve_%s.csv", w.now().UTC().Format(reportTimestampLayout))
	return w.writeFile(name, buf.Bytes())
}

func (w *ReportWriter) writeFile(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(w.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func encodeCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	header := []string{
		"strategy", "risk_tier", "total_rounds", "total_bets", "winning_bets", "hit_rate",
		"net_profit", "roi", "sharpe_ratio", "sortino_ratio", "max_drawdown", "profit_factor",
		"consistency_score", "risk_adjusted_score", "max_win_streak", "max_loss_streak",
		"underfilled_series", "recommendation",
	}
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	for _, s := range report.Strategies {
		m := s.Metrics
		record := []string{
			m.StrategyName,
			string(m.RiskTier),
			strconv.Itoa(m.TotalRounds),
			strconv.Itoa(m.TotalBets),
			strconv.Itoa(m.WinningBets),
			formatFloat(m.HitRate),
			formatFloat(m.NetProfit),
			formatFloat(m.ROI),
			formatFloat(m.SharpeRatio),
			formatFloat(m.SortinoRatio),
			formatFloat(m.MaxDrawdown),
			m.ProfitFactor.csvValue(),
			formatFloat(m.ConsistencyScore),
			formatFloat(m.RiskAdjustedScore),
			strconv.Itoa(m.MaxWinStreak),
			strconv.Itoa(m.MaxLossStreak),
			strconv.Itoa(m.UnderfilledSeries),
			s.Recommendation,
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

// ToRecords converts a report into persistence rows
func ToRecords(report *Report) (*models.BacktestRun, []*models.StrategyPerformance, error) {
	full, err := json.Marshal(report)
	if err != nil {
		return nil, nil, err
	}
	run := &models.BacktestRun{
		RunDate:         report.GeneratedAt,
		StartRound:      report.StartRound,
		EndRound:        report.EndRound,
		RoundsProcessed: report.RoundsProcessed,
		RoundsSkipped:   report.RoundsSkipped,
		Anomalies:       len(report.Anomalies),
		UnitStake:       report.UnitStake,
		RiskFreeRate:    report.RiskFreeRate,
		TopStrategy:     report.TopStrategy,
		FullResults:     full,
	}
	if err := run.ID.UnmarshalText([]byte(report.RunID)); err != nil {
		return nil, nil, fmt.Errorf("invalid run id: %w", err)
	}

	perfs := make([]*models.StrategyPerformance, 0, len(report.Strategies))
	for _, s := range report.Strategies {
		m := s.Metrics
		perf := &models.StrategyPerformance{
			RunID:             run.ID,
			StrategyName:      m.StrategyName,
			RiskTier:          m.RiskTier,
			Time:              report.GeneratedAt,
			TotalRounds:       m.TotalRounds,
			TotalBets:         m.TotalBets,
			WinningBets:       m.WinningBets,
			NetProfit:         m.NetProfit,
			ROI:               m.ROI,
			SharpeRatio:       m.SharpeRatio,
			SortinoRatio:      m.SortinoRatio,
			MaxDrawdown:       m.MaxDrawdown,
			ProfitFactorKind:  string(m.ProfitFactor.Kind),
			Consistency:       m.ConsistencyScore,
			RiskAdjustedScore: m.RiskAdjustedScore,
			Recommendation:    s.Recommendation,
		}
		if m.ProfitFactor.Kind == ProfitFactorFinite {
			pf := m.ProfitFactor.Value
			perf.ProfitFactor = &pf
		}
		perfs = append(perfs, perf)
	}
	return run, perfs, nil
}
