package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tokentrail/tokentrail/internal/config"
	"github.com/tokentrail/tokentrail/internal/logger"
	"github.com/tokentrail/tokentrail/internal/storage"
)

var watchLabel string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the address watchlist",
	Long:  `Add, remove, or list the wallet addresses tracked in PostgreSQL.`,
}

var watchAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Add an address to the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchAdd,
}

var watchRemoveCmd = &cobra.Command{
	Use:   "remove <address>",
	Short: "Remove an address from the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchRemove,
}

var watchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched addresses",
	RunE:  runWatchList,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.AddCommand(watchAddCmd)
	watchCmd.AddCommand(watchRemoveCmd)
	watchCmd.AddCommand(watchListCmd)

	watchAddCmd.Flags().StringVar(&watchLabel, "label", "", "human-readable label for the address")
}

func openStore(ctx context.Context) (*storage.Store, error) {
	_, databaseURL, err := config.LoadWithDatabase(cfgFile, envFile)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(ctx, databaseURL)
}

func runWatchAdd(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	address := args[0]
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid Ethereum address: %s", address)
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return err
	}
	defer store.Close()

	entry, err := store.AddEntry(ctx, address, watchLabel)
	if err != nil {
		slog.Error("Failed to add watchlist entry", "error", err)
		return err
	}

	slog.Info("Address added to watchlist",
		"id", entry.ID,
		"address", entry.Address,
		"label", entry.Label,
	)
	return nil
}

func runWatchRemove(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	address := args[0]
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid Ethereum address: %s", address)
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return err
	}
	defer store.Close()

	removed, err := store.RemoveEntry(ctx, address)
	if err != nil {
		slog.Error("Failed to remove watchlist entry", "error", err)
		return err
	}
	if !removed {
		return fmt.Errorf("address not watched: %s", address)
	}

	slog.Info("Address removed from watchlist", "address", address)
	return nil
}

func runWatchList(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return err
	}
	defer store.Close()

	entries, err := store.ListEntries(ctx)
	if err != nil {
		slog.Error("Failed to list watchlist", "error", err)
		return err
	}

	if len(entries) == 0 {
		fmt.Println("Watchlist is empty.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Address", "Label", "Added"})

	for _, entry := range entries {
		t.AppendRow(table.Row{
			entry.ID,
			entry.Address,
			entry.Label,
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	t.Render()
	return nil
}
