package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. ARENA_BETS_APP_LOG_LEVEL
const EnvPrefix = "ARENA_BETS"

const defaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parse(data)
}

// LoadWithDefaults loads configuration, continuing with defaults and
// environment variables when the file does not exist
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parse(data)
}

func parse(data []byte) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if len(data) > 0 {
		// Expand environment variables in the configuration (${VAR} syntax)
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arena-bets")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("backtest.unit_stake", 1.0)
	v.SetDefault("backtest.risk_free_rate", 0.02)
	v.SetDefault("backtest.min_bets_required", 10)
	v.SetDefault("backtest.series_size", 10)
	v.SetDefault("backtest.relaxed_beam_width", 500)
	v.SetDefault("backtest.exhaustive_limit", 4096)
	v.SetDefault("backtest.monte_carlo_iterations", 1000)
	v.SetDefault("backtest.monte_carlo_seed", 42)
	v.SetDefault("backtest.window_rounds", 50)
	v.SetDefault("backtest.output_path", "reports")
	v.SetDefault("backtest.report_formats", []string{"json"})

	v.SetDefault("data_source.type", "http")
	v.SetDefault("data_source.timeout_seconds", 30)
	v.SetDefault("data_source.retry_attempts", 3)
	v.SetDefault("data_source.rate_limit_per_second", 10.0)
	v.SetDefault("data_source.cache_ttl_seconds", 300)
	v.SetDefault("data_source.outcome_store", "source")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.cron", "*/15 * * * *")
}
