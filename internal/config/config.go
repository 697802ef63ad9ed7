// Package config provides configuration management for the arena backtester.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Strategies []ProfileConfig  `mapstructure:"strategies" validate:"dive"`
	DataSource DataSourceConfig `mapstructure:"data_source" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartRound           int      `mapstructure:"start_round" validate:"gte=0"`
	EndRound             int      `mapstructure:"end_round" validate:"gte=0"`
	WindowRounds         int      `mapstructure:"window_rounds" validate:"gte=0"`
	UnitStake            float64  `mapstructure:"unit_stake" validate:"required,gt=0"`
	RiskFreeRate         float64  `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	MinBetsRequired      int      `mapstructure:"min_bets_required" validate:"required,gt=0"`
	SeriesSize           int      `mapstructure:"series_size" validate:"required,gt=0"`
	RelaxedBeamWidth     int      `mapstructure:"relaxed_beam_width" validate:"required,gt=0"`
	ExhaustiveLimit      int      `mapstructure:"exhaustive_limit" validate:"required,gt=0"`
	MonteCarloIterations int      `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	MonteCarloSeed       int64    `mapstructure:"monte_carlo_seed"`
	OutputPath           string   `mapstructure:"output_path" validate:"required"`
	ReportFormats        []string `mapstructure:"report_formats" validate:"required,min=1,dive,reportformat"`
}

// ProfileConfig overrides one built-in strategy profile. Zero fields keep the default.
type ProfileConfig struct {
	Name                  string  `mapstructure:"name" validate:"required"`
	MinWinProbability     float64 `mapstructure:"min_win_probability" validate:"gte=0,lt=1"`
	MaxCandidatesPerArena int     `mapstructure:"max_candidates_per_arena" validate:"gte=0"`
	MinPicks              int     `mapstructure:"min_picks" validate:"gte=0"`
	MaxPicks              int     `mapstructure:"max_picks" validate:"gte=0"`
	BeamWidth             int     `mapstructure:"beam_width" validate:"gte=0"`
	RelaxedMinPicks       int     `mapstructure:"relaxed_min_picks" validate:"gte=0"`
	RelaxedMaxPicks       int     `mapstructure:"relaxed_max_picks" validate:"gte=0"`
}

// DataSourceConfig represents where predictions and outcomes are read from
type DataSourceConfig struct {
	Type               string  `mapstructure:"type" validate:"required,oneof=http sqlite"`
	BaseURL            string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	SQLitePath         string  `mapstructure:"sqlite_path"`
	OutcomeStore       string  `mapstructure:"outcome_store" validate:"omitempty,oneof=source postgres"`
}

// DatabaseConfig represents the optional Postgres connection used for reports and outcomes
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig represents recurring backtest scheduling
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// SecretsConfig selects the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Timeout returns the data source request timeout
func (d DataSourceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long fetched predictions stay cached
func (d DataSourceConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLSeconds) * time.Second
}
