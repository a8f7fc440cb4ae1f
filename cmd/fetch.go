package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tokentrail/tokentrail/internal/config"
	"github.com/tokentrail/tokentrail/internal/logger"
	"github.com/tokentrail/tokentrail/internal/provider"
	"github.com/tokentrail/tokentrail/internal/storage"
	"github.com/tokentrail/tokentrail/internal/transfer"
)

var (
	fetchAll  bool
	fetchJSON bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [address...]",
	Short: "Fetch ERC-20 transfer history for addresses",
	Long: `Fetch the latest page of ERC-20 token transfers for one or more wallet
addresses. Etherscan is queried first when configured, with Covalent as
fallback. Results are printed and discarded, nothing is persisted.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "fetch for every watchlist entry (requires DATABASE_URL)")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print transfers as JSON instead of a table")
}

// newFetcher assembles the provider chain from the loaded configuration.
func newFetcher(cfg *config.Config) *provider.Fetcher {
	etherscan := provider.NewEtherscan(cfg.EtherscanAPIKey, provider.WithEtherscanBaseURL(cfg.EtherscanBaseURL))
	covalent := provider.NewCovalent(cfg.CovalentAPIKey, provider.WithCovalentBaseURL(cfg.CovalentBaseURL))
	return provider.NewFetcher(etherscan, covalent)
}

func fetchOptions(cfg *config.Config) provider.Options {
	return provider.Options{
		ChainID:  cfg.ChainID,
		PageSize: cfg.PageSize,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	if len(args) == 0 && !fetchAll {
		return fmt.Errorf("specify at least one address or use --all")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The watchlist only lives in the database, so --all also needs
	// DATABASE_URL.
	var (
		cfg         *config.Config
		databaseURL string
		err         error
	)
	if fetchAll {
		cfg, databaseURL, err = config.LoadWithDatabase(cfgFile, envFile)
	} else {
		cfg, err = config.Load(cfgFile, envFile)
	}
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return err
	}

	// The config file may pin a different level than the --log-level flag.
	if cfg.LogLevel != "" {
		logger.Setup(cfg.LogLevel)
	}

	if !cfg.HasAnyAPIKey() {
		slog.Warn("No provider API key configured, fetches will return empty results",
			"hint", "set TOKENTRAIL_ETHERSCAN_API_KEY or TOKENTRAIL_COVALENT_API_KEY")
	}

	addresses := make([]string, 0, len(args))
	for _, arg := range args {
		if !common.IsHexAddress(arg) {
			return fmt.Errorf("invalid Ethereum address: %s", arg)
		}
		addresses = append(addresses, arg)
	}

	if fetchAll {
		store, err := storage.NewStore(ctx, databaseURL)
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
			slog.Warn("Watchlist is empty, nothing to fetch")
		}
		for _, entry := range entries {
			addresses = append(addresses, entry.Address)
		}
	}

	fetcher := newFetcher(cfg)
	opts := fetchOptions(cfg)

	for _, address := range addresses {
		select {
		case <-ctx.Done():
			slog.Info("Interrupted, stopping")
			return ctx.Err()
		default:
		}

		records, err := fetcher.FetchTokenTransfers(ctx, address, opts)
		if err != nil {
			slog.Error("Transfer fetch failed", "address", address, "error", err)
			return err
		}

		transfer.SortByTimeDesc(records)

		if fetchJSON {
			if err := printTransfersJSON(address, records); err != nil {
				return err
			}
			continue
		}

		printTransfersTable(address, records)
	}

	return nil
}

func printTransfersTable(address string, records []transfer.Transfer) {
	if len(records) == 0 {
		fmt.Printf("No transfers found for %s.\n", address)
		return
	}

	fmt.Printf("Transfers for %s:\n", address)
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Time", "Direction", "Token", "Amount", "Counterparty", "Source", "Tx Hash"})

	for _, rec := range records {
		direction := rec.Direction(address)
		counterparty := rec.From
		if direction == transfer.DirectionOut {
			counterparty = rec.To
		}

		t.AppendRow(table.Row{
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			string(direction),
			rec.TokenSymbol,
			rec.HumanAmount(),
			counterparty,
			string(rec.Source),
			rec.TxHash,
		})
	}

	t.Render()
}

func printTransfersJSON(address string, records []transfer.Transfer) error {
	out := struct {
		Address   string              `json:"address"`
		Count     int                 `json:"count"`
		Transfers []transfer.Transfer `json:"transfers"`
	}{
		Address:   address,
		Count:     len(records),
		Transfers: records,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
