package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tokentrail/tokentrail/internal/config"
	"github.com/tokentrail/tokentrail/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Check the configuration without starting anything",
	Long: `Parse the config file and environment, run every validation rule, and
report what the process would run with.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		return err
	}

	// DATABASE_URL is only needed by the watch/serve/migrate paths, so its
	// absence is reported rather than rejected.
	databaseURLSet := config.DatabaseURL() != ""

	slog.Info("Configuration OK",
		"chain_id", cfg.ChainID,
		"page_size", cfg.PageSize,
		"etherscan_configured", cfg.EtherscanAPIKey != "",
		"covalent_configured", cfg.CovalentAPIKey != "",
		"interval", cfg.Interval,
		"log_level", cfg.LogLevel,
		"database_url_set", databaseURLSet,
	)

	if !cfg.HasAnyAPIKey() {
		slog.Warn("No provider API key configured, fetches will return empty results")
	}

	return nil
}
