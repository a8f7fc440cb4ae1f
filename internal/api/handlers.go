package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/tokentrail/tokentrail/internal/provider"
	"github.com/tokentrail/tokentrail/internal/storage"
	"github.com/tokentrail/tokentrail/internal/transfer"
)

type watchRequest struct {
	Label string `json:"label"`
}

// transferView decorates a transfer with fields that only make sense
// relative to the queried address.
type transferView struct {
	transfer.Transfer
	Direction transfer.Direction `json:"direction"`
	Amount    string             `json:"amount"`
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEntries(r.Context())
	if err != nil {
		slog.Error("Failed to list watchlist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list watchlist")
		return
	}

	writeList(w, entries, listMeta{Count: len(entries)})
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid Ethereum address")
		return
	}

	// An absent body means watch with no label.
	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entry, err := s.store.AddEntry(r.Context(), address, req.Label)
	if err != nil {
		slog.Error("Failed to add watchlist entry", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add watchlist entry")
		return
	}

	writeBody(w, entry)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid Ethereum address")
		return
	}

	removed, err := s.store.RemoveEntry(r.Context(), address)
	if err != nil {
		slog.Error("Failed to remove watchlist entry", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove watchlist entry")
		return
	}

	if !removed {
		writeError(w, http.StatusNotFound, "address not watched")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatchedTransfers(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid Ethereum address")
		return
	}

	entry, err := s.store.GetEntry(r.Context(), address)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "address not watched")
		return
	}
	if err != nil {
		slog.Error("Failed to look up watchlist entry", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up watchlist entry")
		return
	}

	// Query with the casing the entry was registered under.
	s.respondTransfers(w, r, entry.Address)
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid Ethereum address")
		return
	}

	s.respondTransfers(w, r, address)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid Ethereum address")
		return
	}

	snap, ok := s.snapshots.get(address)
	if !ok {
		writeError(w, http.StatusNotFound, "no snapshot for address")
		return
	}

	writeBody(w, snap)
}

func (s *Server) respondTransfers(w http.ResponseWriter, r *http.Request, address string) {
	transfers, err := s.fetcher.FetchTokenTransfers(r.Context(), address, s.opts)
	if err != nil {
		s.writeFetchError(w, address, err)
		return
	}

	transfer.SortByTimeDesc(transfers)

	views := make([]transferView, 0, len(transfers))
	for _, tr := range transfers {
		views = append(views, transferView{
			Transfer:  tr,
			Direction: tr.Direction(address),
			Amount:    tr.HumanAmount(),
		})
	}

	writeList(w, views, listMeta{Count: len(views), Address: address})
}

func (s *Server) writeFetchError(w http.ResponseWriter, address string, err error) {
	slog.Error("Transfer fetch failed", "address", address, "error", err)

	var cfgErr *provider.ConfigError
	var httpErr *provider.HTTPError
	var provErr *provider.ProviderError

	switch {
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusServiceUnavailable, cfgErr.Error())
	case errors.As(err, &httpErr):
		writeError(w, http.StatusBadGateway, httpErr.Error())
	case errors.As(err, &provErr):
		writeError(w, http.StatusBadGateway, provErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "transfer fetch failed")
	}
}
