package provider

import (
	"context"

	"github.com/tokentrail/tokentrail/internal/transfer"
)

const (
	defaultChainID       = 1
	defaultPage          = 1
	defaultPageSize      = 50
	defaultSortOrder     = "desc"
	defaultTokenDecimals = 18
)

// Options tunes a single history fetch. Zero values fall back to the
// documented defaults at call time, so the literal Options{} asks for the
// newest 50 records on Ethereum mainnet.
type Options struct {
	ChainID   int64  // target chain id, default 1 (Ethereum mainnet)
	Page      int    // 1-based result page, default 1 (Etherscan only)
	PageSize  int    // records per page, default 50
	SortOrder string // "asc" or "desc", default "desc" (Etherscan only)
}

func (o Options) withDefaults() Options {
	if o.ChainID <= 0 {
		o.ChainID = defaultChainID
	}
	if o.Page <= 0 {
		o.Page = defaultPage
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.SortOrder == "" {
		o.SortOrder = defaultSortOrder
	}
	return o
}

// TransferSource is one external transfer-history API. Implementations hold
// their credential from construction onward and never mutate shared state,
// so a source can be shared across goroutines.
type TransferSource interface {
	// Configured reports whether the credential this source needs is set.
	Configured() bool

	// TokenTransfers fetches one page of ERC-20 transfer history for
	// address and normalizes it into canonical records. A provider-confirmed
	// "no transactions" answer is a successful empty slice, not an error.
	TokenTransfers(ctx context.Context, address string, opts Options) ([]transfer.Transfer, error)
}
