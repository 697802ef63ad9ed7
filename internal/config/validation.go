package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ReportFormats lists the report encodings the writer supports
var ReportFormats = []string{"json", "yaml", "csv"}

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("reportformat", validateReportFormat)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateReportFormat(fl validator.FieldLevel) bool {
	format := strings.ToLower(fl.Field().String())
	for _, f := range ReportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Backtest.StartRound > cfg.Backtest.EndRound {
		return fmt.Errorf("backtest start_round (%d) must not exceed end_round (%d)", cfg.Backtest.StartRound, cfg.Backtest.EndRound)
	}

	if cfg.Backtest.SeriesSize < cfg.Backtest.MinBetsRequired {
		return fmt.Errorf("backtest series_size cannot be smaller than min_bets_required")
	}

	for _, p := range cfg.Strategies {
		if p.MinPicks > 0 && p.MaxPicks > 0 && p.MinPicks > p.MaxPicks {
			return fmt.Errorf("strategy %s: min_picks cannot exceed max_picks", p.Name)
		}
		if p.RelaxedMinPicks > 0 && p.RelaxedMaxPicks > 0 && p.RelaxedMinPicks > p.RelaxedMaxPicks {
			return fmt.Errorf("strategy %s: relaxed_min_picks cannot exceed relaxed_max_picks", p.Name)
		}
	}

	switch cfg.DataSource.Type {
	case "http":
		if cfg.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the http source")
		}
	case "sqlite":
		if cfg.DataSource.SQLitePath == "" {
			return fmt.Errorf("data_source.sqlite_path is required for the sqlite source")
		}
	}

	if cfg.DataSource.OutcomeStore == "postgres" && !cfg.Database.Enabled {
		return fmt.Errorf("outcome_store postgres requires database.enabled")
	}

	if cfg.Database.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when the database is enabled")
		}
		if cfg.Database.MinConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("min_connections cannot exceed max_connections")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	if cfg.Schedule.Enabled && cfg.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron is required when scheduling is enabled")
	}

	if cfg.Secrets.Enabled && (cfg.Secrets.Region == "" || cfg.Secrets.SecretName == "") {
		return fmt.Errorf("secrets region and secret_name are required when secrets are enabled")
	}

	return nil
}

func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "reportformat":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: %s\n", field, strings.Join(ReportFormats, ", "))
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
