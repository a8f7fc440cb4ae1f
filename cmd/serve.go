package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"github.com/tokentrail/tokentrail/internal/api"
	"github.com/tokentrail/tokentrail/internal/config"
	"github.com/tokentrail/tokentrail/internal/health"
	"github.com/tokentrail/tokentrail/internal/logger"
	"github.com/tokentrail/tokentrail/internal/provider"
	"github.com/tokentrail/tokentrail/internal/scheduler"
	"github.com/tokentrail/tokentrail/internal/storage"
	"github.com/tokentrail/tokentrail/internal/transfer"
)

var serveInterval string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the watchlist API server",
	Long: `Serve the watchlist and transfer REST API over HTTP. When a refresh
interval is configured the server also runs a scheduled job that fetches
transfers for every watched address and keeps the latest results in memory.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveInterval, "interval", "", "refresh interval - duration (5m, 1h) or cron (\"*/5 * * * *\") - empty disables the refresh job")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Setup(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, databaseURL, err := config.LoadWithDatabase(cfgFile, envFile)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return err
	}

	// The config file may pin a different level than the --log-level flag.
	if cfg.LogLevel != "" {
		logger.Setup(cfg.LogLevel)
	}

	flush, err := initSentry(cfg.SentryDSN)
	if err != nil {
		slog.Error("Sentry initialization failed", "error", err)
		return err
	}
	defer flush()

	// The --interval flag outranks the config file.
	refreshInterval := serveInterval
	if refreshInterval == "" {
		refreshInterval = cfg.Interval
	}

	slog.Info("Configuration loaded",
		"config_path", cfgFile,
		"chain_id", cfg.ChainID,
		"page_size", cfg.PageSize,
		"interval", refreshInterval,
		"providers_configured", cfg.HasAnyAPIKey(),
	)

	store, err := storage.NewStore(ctx, databaseURL)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return err
	}
	defer store.Close()
	slog.Info("PostgreSQL connection established")

	if err := storage.RunMigrations(ctx, databaseURL); err != nil {
		slog.Error("Migrations failed", "error", err)
		return err
	}

	fetcher := newFetcher(cfg)
	opts := fetchOptions(cfg)

	if !cfg.HasAnyAPIKey() {
		slog.Warn("No provider API key configured, transfer endpoints will return empty results",
			"hint", "set TOKENTRAIL_ETHERSCAN_API_KEY or TOKENTRAIL_COVALENT_API_KEY")
	}

	// The refresh job and the health checker reference each other through
	// these variables; both are assigned before the scheduler starts.
	var (
		healthChecker *health.Checker
		apiServer     *api.Server
	)

	refreshJob := func(jobCtx context.Context) error {
		err := refreshWatchlist(jobCtx, store, fetcher, opts, apiServer)
		if healthChecker != nil {
			healthChecker.UpdateLastRun(err == nil)
		}
		return err
	}

	var sched *scheduler.Scheduler
	var expectedInterval time.Duration

	if refreshInterval != "" {
		sched, err = scheduler.New(ctx, scheduler.Config{
			Interval:       refreshInterval,
			Timezone:       cfg.GetTimezone(),
			RunImmediately: cfg.ShouldRunImmediately(),
			Logger:         slog.Default(),
		}, refreshJob)
		if err != nil {
			slog.Error("Scheduler setup failed", "error", err)
			return fmt.Errorf("set up scheduler: %w", err)
		}
		defer sched.Stop()

		expectedInterval = sched.ExpectedInterval()
	}

	healthChecker = health.NewChecker(store, fetcher, expectedInterval)
	apiServer = api.NewServer(store, fetcher, healthChecker.Handler(), opts)

	httpPort := cfg.HTTPPort
	if httpPort == 0 {
		httpPort = 8080
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", httpPort),
		Handler: apiServer.Router(),
	}

	go func() {
		slog.Info("API server starting", "port", httpPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server error", "error", err)
			sentry.CaptureException(err)
			stop()
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown error", "error", err)
		}
	}()

	if sched != nil {
		if err := sched.Start(); err != nil {
			slog.Error("Scheduler start failed", "error", err)
			return fmt.Errorf("start scheduler: %w", err)
		}
		slog.Info("Refresh job scheduled",
			"schedule", scheduler.Describe(refreshInterval, cfg.GetTimezone()),
			"run_immediately", cfg.ShouldRunImmediately())
	}

	<-ctx.Done()
	slog.Info("Shutdown requested, stopping server")
	return nil
}

// initSentry enables crash reporting when a DSN is configured. The returned
// function flushes buffered events and is safe to defer either way.
func initSentry(dsn string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		TracesSampleRate: 1.0,
	}); err != nil {
		return nil, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// refreshWatchlist fetches transfers for every watched address, one address
// at a time, and keeps the API snapshot current. Individual failures are
// reported and skipped so one bad address cannot starve the rest.
func refreshWatchlist(ctx context.Context, store *storage.Store, fetcher *provider.Fetcher, opts provider.Options, apiServer *api.Server) error {
	entries, err := store.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list watchlist: %w", err)
	}

	if len(entries) == 0 {
		slog.Info("Watchlist is empty, nothing to refresh")
		return nil
	}

	var failed int
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			slog.Info("Shutdown requested, stopping refresh")
			return ctx.Err()
		default:
		}

		records, err := fetcher.FetchTokenTransfers(ctx, entry.Address, opts)
		if err != nil {
			slog.Error("Refresh fetch failed", "address", entry.Address, "error", err)
			sentry.CaptureException(err)
			failed++
			continue
		}

		transfer.SortByTimeDesc(records)
		apiServer.UpdateSnapshot(entry.Address, records)

		slog.Info("Watchlist entry refreshed",
			"address", entry.Address,
			"label", entry.Label,
			"transfers", len(records),
		)
	}

	if failed > 0 {
		return fmt.Errorf("refresh completed with %d failed address(es) of %d", failed, len(entries))
	}

	slog.Info("Watchlist refresh completed", "addresses", len(entries))
	return nil
}
