package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/arena-bets/internal/datasource"
	"github.com/yourusername/arena-bets/internal/metrics"
)

// BacktestRunner executes one backtest over an inclusive round window
type BacktestRunner interface {
	RunWindow(ctx context.Context, startRound, endRound int) error
}

// RunnerFunc adapts a function to BacktestRunner
type RunnerFunc func(ctx context.Context, startRound, endRound int) error

// RunWindow calls f
func (f RunnerFunc) RunWindow(ctx context.Context, startRound, endRound int) error {
	return f(ctx, startRound, endRound)
}

// ErrNoNewRounds is returned when no round settled since the previous scheduled run
var ErrNoNewRounds = errors.New("no new rounds since last run")

// Scheduler manages recurring backtests over a rolling window of recent rounds
type Scheduler struct {
	cron            *cron.Cron
	runner          BacktestRunner
	rounds          datasource.RoundLister
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	lastRound       int
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(runner BacktestRunner, rounds datasource.RoundLister, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		runner:          runner,
		rounds:          rounds,
		logger:          log.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      time.Hour,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRollingBacktest runs a backtest over the latest windowRounds rounds on every cron tick
func (s *Scheduler) ScheduleRollingBacktest(cronExpression string, windowRounds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if windowRounds <= 0 {
		return fmt.Errorf("window rounds must be positive")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		if err := s.RunNow(ctx, windowRounds); err != nil && !errors.Is(err, ErrNoNewRounds) {
			s.logger.WithError(err).Error("Scheduled backtest failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":          cronExpression,
		"window_rounds": windowRounds,
	}).Info("Scheduled rolling backtest")
	return nil
}

// RunNow executes one rolling backtest immediately. It returns ErrNoNewRounds
// when the latest settled round has already been covered.
func (s *Scheduler) RunNow(ctx context.Context, windowRounds int) error {
	latest, err := s.rounds.LatestRound(ctx)
	if err != nil {
		metrics.RecordBacktestRun("schedule", "error")
		return fmt.Errorf("failed to resolve latest round: %w", err)
	}

	s.mu.Lock()
	if latest <= s.lastRound {
		s.mu.Unlock()
		metrics.RecordBacktestRun("schedule", "skipped")
		s.logger.WithField("latest_round", latest).Debug("No new rounds, skipping scheduled backtest")
		return ErrNoNewRounds
	}
	s.mu.Unlock()

	start, end := Window(latest, windowRounds)
	s.logger.WithFields(logrus.Fields{
		"start_round": start,
		"end_round":   end,
	}).Info("Starting scheduled backtest")

	began := time.Now()
	if err := s.runner.RunWindow(ctx, start, end); err != nil {
		metrics.RecordBacktestRun("schedule", "error")
		return err
	}
	metrics.RecordBacktestRun("schedule", "success")
	metrics.RecordBacktestDuration(time.Since(began).Seconds())

	s.mu.Lock()
	s.lastRound = latest
	s.mu.Unlock()
	return nil
}

// Window returns the inclusive range of the last windowRounds rounds ending at latest
func Window(latest, windowRounds int) (int, int) {
	start := latest - windowRounds + 1
	if start < 1 {
		start = 1
	}
	return start, latest
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs to finish, up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler did not stop within %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
