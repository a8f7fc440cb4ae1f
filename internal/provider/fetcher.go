package provider

import (
	"context"
	"log/slog"

	"github.com/tokentrail/tokentrail/internal/transfer"
)

// Fetcher is the entry point of the fetch layer. It picks a provider based
// on which credentials are configured: Etherscan is preferred when its key
// is set, with Covalent as the fallback when both are available.
type Fetcher struct {
	etherscan TransferSource
	covalent  TransferSource
}

// NewFetcher wires the two sources together. Both must be non-nil; pass an
// unconfigured source when a credential is absent.
func NewFetcher(etherscan, covalent TransferSource) *Fetcher {
	return &Fetcher{
		etherscan: etherscan,
		covalent:  covalent,
	}
}

// FetchTokenTransfers returns one page of normalized ERC-20 transfer history
// for address.
//
// With the Etherscan key configured it is tried first; on failure the call
// falls back to Covalent when that key is configured too, otherwise the
// Etherscan error is surfaced unchanged. With only the Covalent key the call
// goes there directly. With no key at all the result is an empty list and no
// error, so callers can print a configuration hint instead of failing.
func (f *Fetcher) FetchTokenTransfers(ctx context.Context, address string, opts Options) ([]transfer.Transfer, error) {
	switch {
	case f.etherscan.Configured():
		records, err := f.etherscan.TokenTransfers(ctx, address, opts)
		if err == nil {
			return records, nil
		}
		if !f.covalent.Configured() {
			return nil, err
		}
		slog.Warn("Etherscan fetch failed, falling back to Covalent",
			"address", address,
			"error", err)
		return f.covalent.TokenTransfers(ctx, address, opts)

	case f.covalent.Configured():
		return f.covalent.TokenTransfers(ctx, address, opts)

	default:
		return []transfer.Transfer{}, nil
	}
}

// HasAnyAPIKey reports whether at least one provider credential is
// configured. It never touches the network; the CLI and the health checker
// use it to warn about a missing data source.
func (f *Fetcher) HasAnyAPIKey() bool {
	return f.etherscan.Configured() || f.covalent.Configured()
}
