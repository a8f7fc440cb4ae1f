// Package api exposes the watchlist and transfer history over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tokentrail/tokentrail/internal/provider"
	"github.com/tokentrail/tokentrail/internal/storage"
	"github.com/tokentrail/tokentrail/internal/transfer"
)

// WatchlistStore is the slice of the storage layer the handlers need.
type WatchlistStore interface {
	AddEntry(ctx context.Context, address, label string) (*storage.WatchlistEntry, error)
	RemoveEntry(ctx context.Context, address string) (bool, error)
	GetEntry(ctx context.Context, address string) (*storage.WatchlistEntry, error)
	ListEntries(ctx context.Context) ([]storage.WatchlistEntry, error)
}

// TransferFetcher retrieves transfer history for an address.
type TransferFetcher interface {
	FetchTokenTransfers(ctx context.Context, address string, opts provider.Options) ([]transfer.Transfer, error)
}

// Server serves the watchlist and transfer endpoints.
type Server struct {
	store     WatchlistStore
	fetcher   TransferFetcher
	health    http.HandlerFunc
	opts      provider.Options
	snapshots *snapshotStore
}

// NewServer wires the handlers to their dependencies. A nil health handler
// leaves the /health route unregistered.
func NewServer(store WatchlistStore, fetcher TransferFetcher, healthHandler http.HandlerFunc, opts provider.Options) *Server {
	return &Server{
		store:     store,
		fetcher:   fetcher,
		health:    healthHandler,
		opts:      opts,
		snapshots: newSnapshotStore(),
	}
}

// UpdateSnapshot records the latest scheduled fetch for an address so that
// clients can read it back without triggering a provider call.
func (s *Server) UpdateSnapshot(address string, transfers []transfer.Transfer) {
	s.snapshots.update(address, transfers)
}

// Router assembles the chi mux with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if s.health != nil {
		r.Get("/health", s.health)
	}

	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", s.handleListWatchlist)
		r.Route("/{address}", func(r chi.Router) {
			r.Put("/", s.handleAddEntry)
			r.Delete("/", s.handleRemoveEntry)
			r.Get("/transfers", s.handleWatchedTransfers)
			r.Get("/snapshot", s.handleSnapshot)
		})
	})

	r.Get("/transfers/{address}", s.handleTransfers)

	return r
}
