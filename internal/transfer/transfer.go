package transfer

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies the provider that produced a transfer record.
type Source string

const (
	SourceCovalent  Source = "covalent"
	SourceEtherscan Source = "etherscan"
)

// Transfer is the canonical, provider-agnostic representation of a single
// ERC-20 token transfer event. Records are transient: they are rebuilt on
// every fetch and are never persisted, merged, or deduplicated.
type Transfer struct {
	Source          Source    `json:"source"`
	TxHash          string    `json:"tx_hash,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	TokenSymbol     string    `json:"token_symbol,omitempty"`
	TokenName       string    `json:"token_name,omitempty"`
	ContractAddress string    `json:"contract_address,omitempty"`
	// RawValue is the amount in the token's smallest denomination, exactly as
	// the provider returned it. It stays a string: parsing it to a numeric
	// type would lose precision for amounts beyond 64 bits.
	RawValue      string `json:"raw_value"`
	TokenDecimals int    `json:"token_decimals"`
}

// Direction classifies a transfer relative to a queried wallet address.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionSelf Direction = "self"
)

// Direction compares the transfer endpoints against address. The comparison
// is case-insensitive because providers disagree on hex casing.
func (t Transfer) Direction(address string) Direction {
	from := strings.EqualFold(t.From, address)
	to := strings.EqualFold(t.To, address)

	switch {
	case from && to:
		return DirectionSelf
	case from:
		return DirectionOut
	default:
		return DirectionIn
	}
}

// HumanAmount renders RawValue scaled down by TokenDecimals as a plain
// decimal string, e.g. "1500000" with 6 decimals becomes "1.5". A RawValue
// that does not parse as a number is returned unchanged so the original
// provider data is never hidden.
func (t Transfer) HumanAmount() string {
	if t.RawValue == "" {
		return "0"
	}

	d, err := decimal.NewFromString(t.RawValue)
	if err != nil {
		return t.RawValue
	}

	if t.TokenDecimals <= 0 {
		return d.String()
	}

	return d.Shift(int32(-t.TokenDecimals)).String()
}

// SortByTimeDesc orders transfers newest first, in place. The fetch layer
// returns records in provider order; sorting is a display concern.
func SortByTimeDesc(transfers []Transfer) {
	slices.SortFunc(transfers, func(a, b Transfer) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
