package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tokentrail/tokentrail/internal/provider"
)

// defaults lists every configuration key the application reads. Registering
// a default makes the key visible to AutomaticEnv, so nothing may be left
// out of this map.
var defaults = map[string]any{
	"etherscan_api_key":  "",
	"covalent_api_key":   "",
	"chain_id":           1,
	"page_size":          50,
	"etherscan_base_url": provider.DefaultEtherscanBaseURL,
	"covalent_base_url":  provider.DefaultCovalentBaseURL,
	"log_level":          "info",
	"interval":           "",
	"http_port":          8080,
	"run_immediately":    true,
	"timezone":           "UTC",
	"sentry_dsn":         "",
}

// Load reads configuration from an optional TOML file and from environment
// variables, env taking precedence. A non-empty envFile is loaded into the
// process environment first, so its entries behave like real env vars.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	// TOKENTRAIL_ETHERSCAN_API_KEY -> etherscan_api_key
	v.SetEnvPrefix("TOKENTRAIL")
	v.AutomaticEnv()

	// The bare provider variable names keep working alongside the
	// prefixed ones.
	v.BindEnv("etherscan_api_key", "TOKENTRAIL_ETHERSCAN_API_KEY", "ETHERSCAN_API_KEY")
	v.BindEnv("covalent_api_key", "TOKENTRAIL_COVALENT_API_KEY", "COVALENT_API_KEY")
	v.BindEnv("sentry_dsn", "TOKENTRAIL_SENTRY_DSN", "SENTRY_DSN")

	// A missing config file is fine, env vars and defaults carry the rest.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Normalize()

	if err := NewValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// DatabaseURL reads the database DSN from the environment, prefixed or
// bare. It lives apart from Load because only the commands that touch the
// watchlist need a database.
func DatabaseURL() string {
	v := viper.New()
	v.BindEnv("database_url", "TOKENTRAIL_DATABASE_URL", "DATABASE_URL")
	return v.GetString("database_url")
}

// LoadWithDatabase loads the config plus the DATABASE_URL environment
// variable, which every command that touches the watchlist requires.
func LoadWithDatabase(configPath, envFile string) (*Config, string, error) {
	cfg, err := Load(configPath, envFile)
	if err != nil {
		return nil, "", err
	}

	databaseURL := DatabaseURL()
	if databaseURL == "" {
		return nil, "", fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, databaseURL, nil
}
