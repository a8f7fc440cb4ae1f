package config

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/tokentrail/tokentrail/internal/scheduler"
)

// Config represents the application configuration. Every key is optional:
// with neither provider key set the fetch layer returns empty results
// instead of failing, so the binary stays usable for watchlist management.
type Config struct {
	EtherscanAPIKey  string `mapstructure:"etherscan_api_key"`
	CovalentAPIKey   string `mapstructure:"covalent_api_key"`
	ChainID          int64  `mapstructure:"chain_id" validate:"required,min=1"`
	PageSize         int    `mapstructure:"page_size" validate:"required,min=1,max=1000"`
	EtherscanBaseURL string `mapstructure:"etherscan_base_url" validate:"required,url"`
	CovalentBaseURL  string `mapstructure:"covalent_base_url" validate:"required,url"`
	LogLevel         string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	HTTPPort         int    `mapstructure:"http_port" validate:"omitempty,min=1024,max=65535"`
	Interval         string `mapstructure:"interval" validate:"omitempty,schedule"`
	RunImmediately   *bool  `mapstructure:"run_immediately"`
	Timezone         string `mapstructure:"timezone" validate:"omitempty,timezone"`
	SentryDSN        string `mapstructure:"sentry_dsn" validate:"omitempty,url"`
}

// HasAnyAPIKey reports whether at least one transfer provider credential is
// set.
func (c *Config) HasAnyAPIKey() bool {
	return c.EtherscanAPIKey != "" || c.CovalentAPIKey != ""
}

// Normalize cleans up values that are equivalent in intent but not in form,
// so the rest of the code can rely on one canonical shape.
func (c *Config) Normalize() {
	c.EtherscanAPIKey = strings.TrimSpace(c.EtherscanAPIKey)
	c.CovalentAPIKey = strings.TrimSpace(c.CovalentAPIKey)
	c.EtherscanBaseURL = strings.TrimRight(strings.TrimSpace(c.EtherscanBaseURL), "/")
	c.CovalentBaseURL = strings.TrimRight(strings.TrimSpace(c.CovalentBaseURL), "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Interval = strings.TrimSpace(c.Interval)
}

// GetTimezone returns the configured timezone, falling back to UTC when the
// name is empty or cannot be loaded. Validation catches bad names earlier,
// so the fallback only matters for hand-built configs.
func (c *Config) GetTimezone() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ShouldRunImmediately reports whether the daemon refreshes once at startup
// before the first scheduled run. Unset means true.
func (c *Config) ShouldRunImmediately() bool {
	if c.RunImmediately == nil {
		return true
	}
	return *c.RunImmediately
}

// IsCronExpression reports whether the interval is a cron expression rather
// than a duration.
func (c *Config) IsCronExpression() bool {
	return scheduler.IsCron(c.Interval)
}

func isEthAddress(fl validator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

// isValidSchedule accepts an empty string (one-shot mode), a clock-aligned
// duration, or a 5/6-field cron expression.
func isValidSchedule(fl validator.FieldLevel) bool {
	return scheduler.ValidateInterval(fl.Field().String()) == nil
}

// NewValidator creates a validator with the custom rules shared by the
// config loader and the CLI.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("eth_addr", isEthAddress)
	validate.RegisterValidation("schedule", isValidSchedule)
	return validate
}
