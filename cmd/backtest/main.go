// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/arena-bets/internal/config"
	"github.com/yourusername/arena-bets/internal/logger"
	"github.com/yourusername/arena-bets/internal/metrics"
	"github.com/yourusername/arena-bets/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLogger  *logrus.Logger

	startRound    int
	endRound      int
	outputDir     string
	reportFormats []string

	cronExpr     string
	windowRounds int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	runCmd.Flags().IntVar(&startRound, "start-round", 0, "First round to replay (overrides config)")
	runCmd.Flags().IntVar(&endRound, "end-round", 0, "Last round to replay (overrides config)")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Report output directory (overrides config)")
	runCmd.Flags().StringSliceVarP(&reportFormats, "format", "f", nil, "Report formats: json, yaml, csv")

	scheduleCmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (overrides config)")
	scheduleCmd.Flags().IntVar(&windowRounds, "window", 0, "Number of most recent rounds per run (overrides config)")
	scheduleCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Report output directory (overrides config)")

	rootCmd.AddCommand(runCmd, scheduleCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest multi-arena bet series strategies",
	Long:  `Replays historical rounds through every risk-tier strategy profile, settles the generated bet series, and ranks the strategies.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest over a round window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cfg, appLogger)
		if err != nil {
			return err
		}
		defer a.Close()
		a.startHealth(ctx)

		start, end := cfg.Backtest.StartRound, cfg.Backtest.EndRound
		if cmd.Flags().Changed("start-round") {
			start = startRound
		}
		if cmd.Flags().Changed("end-round") {
			end = endRound
		}

		if err := a.RunWindow(ctx, start, end); err != nil {
			metrics.RecordBacktestRun("manual", "error")
			return err
		}
		metrics.RecordBacktestRun("manual", "success")
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run rolling backtests on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cfg, appLogger)
		if err != nil {
			return err
		}
		defer a.Close()
		a.startHealth(ctx)

		expr := cfg.Schedule.Cron
		if cronExpr != "" {
			expr = cronExpr
		}
		window := cfg.Backtest.WindowRounds
		if windowRounds > 0 {
			window = windowRounds
		}

		sched := scheduler.NewScheduler(a, a.sources.Rounds, appLogger)
		if err := sched.ScheduleRollingBacktest(expr, window); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		appLogger.WithField("next_run", sched.GetNextRun()).Info("Waiting for scheduled backtests")

		<-ctx.Done()
		return sched.Stop()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backtest %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if loaded.Secrets.Enabled {
		if err := config.LoadSecretsFromAWS(ctx, loaded); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if outputDir != "" {
		loaded.Backtest.OutputPath = outputDir
	}
	if len(reportFormats) > 0 {
		loaded.Backtest.ReportFormats = reportFormats
	}
	if err := config.Validate(loaded); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	appLogger = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
