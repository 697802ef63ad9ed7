package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arena-bets/internal/backtest"
	"github.com/yourusername/arena-bets/internal/config"
	"github.com/yourusername/arena-bets/internal/database"
	"github.com/yourusername/arena-bets/internal/datasource"
	"github.com/yourusername/arena-bets/internal/health"
	"github.com/yourusername/arena-bets/internal/metrics"
	"github.com/yourusername/arena-bets/internal/repository"
)

// app wires configuration to sources, persistence, and reporting
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	sources  *datasource.Sources
	outcomes datasource.OutcomeSource
	db       *database.DB
	repos    *repository.Repositories
	health   *health.Server
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	sources, err := datasource.NewFactory(log).NewSources(cfg.DataSource)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: log, sources: sources, outcomes: sources.Outcomes}

	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			sources.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			sources.Close()
			return nil, err
		}
		a.db, a.repos = db, repos
		if cfg.DataSource.OutcomeStore == "postgres" {
			a.outcomes = repos.Outcomes
		}
	}
	return a, nil
}

// Close releases sources and the database pool
func (a *app) Close() {
	if err := a.sources.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close data source")
	}
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) startHealth(ctx context.Context) {
	if !a.cfg.Metrics.Enabled {
		return
	}
	checks := map[string]health.Check{}
	if a.db != nil {
		checks["database"] = a.db.HealthCheck
	}
	a.health = health.NewServer(health.Config{
		ServiceName:    a.cfg.App.Name,
		Version:        Version,
		Port:           a.cfg.Metrics.Port,
		MetricsPath:    a.cfg.Metrics.Path,
		MetricsHandler: metrics.Handler(),
		Logger:         a.logger,
		Checks:         checks,
	})
	if err := a.health.Start(ctx); err != nil {
		a.logger.WithError(err).Warn("Failed to start health server")
		return
	}
	a.health.SetReady(true)
}

// RunWindow runs one backtest over [start, end], writes its reports, and persists it when a database is configured
func (a *app) RunWindow(ctx context.Context, start, end int) error {
	btConfig, err := backtest.FromConfig(a.cfg)
	if err != nil {
		return fmt.Errorf("invalid backtest config: %w", err)
	}
	btConfig = btConfig.WithRounds(start, end)

	engine, err := backtest.NewEngine(btConfig, a.sources.Predictions, a.outcomes, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	began := time.Now()
	_, report, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}
	metrics.RecordBacktestDuration(time.Since(began).Seconds())
	for _, s := range report.Strategies {
		metrics.UpdateStrategyScores(s.Metrics.StrategyName, s.Metrics.RiskAdjustedScore, s.Metrics.ROI)
	}
	if a.sources.Cache != nil {
		a.sources.Cache.LogStats()
	}

	paths, err := backtest.NewReportWriter(btConfig.OutputPath).WriteAll(report, btConfig.ReportFormats)
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	if err := backtest.GenerateConsoleReport(os.Stdout, report); err != nil {
		a.logger.WithError(err).Warn("Failed to render console report")
	}

	if a.repos != nil {
		run, perfs, err := backtest.ToRecords(report)
		if err != nil {
			return err
		}
		if err := a.repos.Reports.SaveReport(ctx, run, perfs); err != nil {
			return fmt.Errorf("failed to persist report: %w", err)
		}
	}
	if a.health != nil {
		a.health.MarkRun(time.Now())
	}

	a.logger.WithFields(logrus.Fields{
		"run_id":       report.RunID,
		"top_strategy": report.TopStrategy,
		"reports":      paths,
	}).Info("Backtest complete")
	return nil
}
