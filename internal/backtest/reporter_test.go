package backtest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/arena-bets/internal/models"
	"github.com/yourusername/arena-bets/internal/strategy"
)

func sampleState(t *testing.T) *BacktestState {
	t.Helper()
	profiles := strategy.DefaultProfiles()
	state := NewBacktestState(profiles)
	for round := 1; round <= 3; round++ {
		rr := &RoundResult{RoundID: round}
		for i, p := range profiles {
			res := roundResult(round, 10, float64((i+round)%3-1)*5)
			res.StrategyName = p.Name
			rr.Results = append(rr.Results, res)
			rr.Series = append(rr.Series, models.BetSeries{RoundID: round, StrategyName: p.Name, Underfilled: p.Name == profiles[0].Name})
		}
		state.Accumulate(rr)
	}
	state.RecordSkipped(4)
	return state
}

func sampleReport(t *testing.T) *Report {
	t.Helper()
	cfg := DefaultConfig().WithRounds(1, 4)
	cfg.MonteCarloIterations = 100
	report, err := Aggregate(context.Background(), sampleState(t), cfg)
	require.NoError(t, err)
	return report
}

func TestAggregate(t *testing.T) {
	report := sampleReport(t)

	profiles := strategy.DefaultProfiles()
	require.Len(t, report.Strategies, len(profiles))
	assert.Equal(t, 3, report.RoundsProcessed)
	assert.Equal(t, 1, report.RoundsSkipped)
	assert.Equal(t, report.Rankings.ByRiskAdjusted[0], report.TopStrategy)
	assert.Equal(t, 3, report.Strategies[0].Metrics.UnderfilledSeries)
	assert.Equal(t, 0, report.Strategies[1].Metrics.UnderfilledSeries)

	recommended := 0
	for i, s := range report.Strategies {
		assert.Equal(t, profiles[i].Name, s.Metrics.StrategyName)
		require.NotNil(t, s.MonteCarlo)
		assert.Len(t, report.EquityCurves[s.Metrics.StrategyName], 3)
		if s.Recommendation == RecommendationRecommended {
			recommended++
			assert.Equal(t, report.TopStrategy, s.Metrics.StrategyName)
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestReportFileName(t *testing.T) {
	ts := time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "backtest_report_20260309_140507.json", ReportFileName(ts, "json"))
}

func TestReportWriterFormats(t *testing.T) {
	report := sampleReport(t)
	dir := t.TempDir()
	writer := NewReportWriter(filepath.Join(dir, "reports"))
	writer.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	paths, err := writer.WriteAll(report, []string{"json", "yaml", "csv"})
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, "backtest_report_20260102_030405.json", filepath.Base(paths[0]))
	assert.Equal(t, "equity_curve_20260102_030405.csv", filepath.Base(paths[3]))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.TopStrategy, decoded["top_strategy"])
	assert.NotContains(t, decoded, "EquityCurves")

	data, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	var yamlDoc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &yamlDoc))
	assert.Equal(t, report.RunID, yamlDoc["run_id"])

	f, err := os.Open(paths[2])
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(report.Strategies)+1)
	assert.Equal(t, "strategy", records[0][0])
	assert.Equal(t, report.Strategies[0].Metrics.StrategyName, records[1][0])

	_, err = writer.Write(report, "xml")
	assert.Error(t, err)
}

func TestGenerateConsoleReport(t *testing.T) {
	report := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, GenerateConsoleReport(&buf, report))

	out := buf.String()
	for _, s := range report.Strategies {
		assert.Contains(t, out, s.Metrics.StrategyName)
	}
	assert.True(t, strings.Contains(out, "By ROI:"))
}

func TestToRecords(t *testing.T) {
	report := sampleReport(t)
	run, perfs, err := ToRecords(report)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, run.ID.String())
	assert.Equal(t, report.TopStrategy, run.TopStrategy)
	assert.True(t, json.Valid(run.FullResults))
	require.Len(t, perfs, len(report.Strategies))
	for i, p := range perfs {
		assert.Equal(t, run.ID, p.RunID)
		assert.NoError(t, p.Validate())
		m := report.Strategies[i].Metrics
		if m.ProfitFactor.Kind == ProfitFactorFinite {
			require.NotNil(t, p.ProfitFactor)
		} else {
			assert.Nil(t, p.ProfitFactor)
		}
		assert.Equal(t, string(m.ProfitFactor.Kind), p.ProfitFactorKind)
	}
}
