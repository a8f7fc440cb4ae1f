package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tokentrail/tokentrail/internal/config"
	"github.com/tokentrail/tokentrail/internal/logger"
	"github.com/tokentrail/tokentrail/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the watchlist database schema",
	Long:  `Apply, roll back, or inspect the goose migrations that define the watchlist schema.`,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(
		newMigrateCommand("up", "Apply all pending migrations", storage.RunMigrations, "Migrations applied"),
		newMigrateCommand("down", "Roll back the most recent migration", storage.MigrateDown, "Migration rolled back"),
		newMigrateCommand("status", "Print the state of every migration", storage.MigrateStatus, ""),
	)
}

// newMigrateCommand wraps one goose action with the config and logging
// setup every migrate subcommand shares.
func newMigrateCommand(use, short string, action func(context.Context, string) error, doneMsg string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Setup(logLevel)

			_, dsn, err := config.LoadWithDatabase(cfgFile, envFile)
			if err != nil {
				return err
			}

			if err := action(cmd.Context(), dsn); err != nil {
				slog.Error("Migration command failed", "command", use, "error", err)
				return err
			}

			if doneMsg != "" {
				slog.Info(doneMsg)
			}
			return nil
		},
	}
}
