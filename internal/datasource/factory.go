package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arena-bets/internal/config"
	"github.com/yourusername/arena-bets/internal/logger"
)

// SourceType represents the type of data source
type SourceType string

const (
	// HTTPSourceType reads rounds from the prediction service API
	HTTPSourceType SourceType = "http"
	// SQLiteSourceType reads rounds from a local archive
	SQLiteSourceType SourceType = "sqlite"
)

// Sources bundles the adapters a backtest run reads from
type Sources struct {
	Predictions PredictionSource
	Outcomes    OutcomeSource
	Rounds      RoundLister
	Cache       *CachedPredictionSource
	closers     []func() error
}

// Close releases every adapter
func (s *Sources) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Factory creates round sources based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(log *logrus.Logger) *Factory {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Factory{logger: log}
}

// NewRoundSource creates the configured RoundSource
func (f *Factory) NewRoundSource(cfg config.DataSourceConfig) (RoundSource, func() error, error) {
	switch SourceType(cfg.Type) {
	case HTTPSourceType:
		if cfg.BaseURL == "" {
			return nil, nil, fmt.Errorf("http data source requires base_url")
		}
		clientCfg := DefaultHTTPClientConfig()
		if cfg.TimeoutSeconds > 0 {
			clientCfg.Timeout = cfg.Timeout()
		}
		clientCfg.MaxRetries = cfg.RetryAttempts
		if cfg.RateLimitPerSecond > 0 {
			clientCfg.RateLimit = cfg.RateLimitPerSecond
		}
		dsLog := logger.NewDataSourceLogger(f.logger, string(HTTPSourceType))
		client := NewRateLimitedHTTPClient(clientCfg, dsLog)
		return NewHTTPRoundSource(client, cfg.BaseURL, cfg.APIKey, dsLog), client.Close, nil

	case SQLiteSourceType:
		if cfg.SQLitePath == "" {
			return nil, nil, fmt.Errorf("sqlite data source requires sqlite_path")
		}
		store, err := NewSQLiteRoundStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown data source: %s (available: %v)", cfg.Type, f.ListAvailableSources())
	}
}

// NewSources builds predictions, outcomes, and round listing from configuration.
// Predictions are cached when a TTL is configured.
func (f *Factory) NewSources(cfg config.DataSourceConfig) (*Sources, error) {
	source, closeFn, err := f.NewRoundSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source %s: %w", cfg.Type, err)
	}

	sources := &Sources{
		Predictions: source,
		Outcomes:    source,
		Rounds:      source,
		closers:     []func() error{closeFn},
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		sources.Cache = NewCachedPredictionSource(source, ttl, logger.NewDataSourceLogger(f.logger, source.Name()))
		sources.Predictions = sources.Cache
	}

	f.logger.WithFields(logrus.Fields{
		"source":    source.Name(),
		"cache_ttl": cfg.CacheTTL().String(),
	}).Info("Created data source")
	return sources, nil
}

// ListAvailableSources returns the supported source types
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{HTTPSourceType, SQLiteSourceType}
}
