package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals int
		want     string
	}{
		{
			name:     "zero amount",
			raw:      "0",
			decimals: 18,
			want:     "0",
		},
		{
			name:     "one smallest unit with 18 decimals",
			raw:      "1",
			decimals: 18,
			want:     "0.000000000000000001",
		},
		{
			name:     "one token (18 decimals)",
			raw:      "1000000000000000000",
			decimals: 18,
			want:     "1",
		},
		{
			name:     "fractional amount with 18 decimals",
			raw:      "1500000000000000000",
			decimals: 18,
			want:     "1.5",
		},
		{
			name:     "stablecoin with 6 decimals",
			raw:      "1500000",
			decimals: 6,
			want:     "1.5",
		},
		{
			name:     "0 decimals token",
			raw:      "100",
			decimals: 0,
			want:     "100",
		},
		{
			name:     "fractional with trailing zeros trimmed",
			raw:      "1100000000000000000",
			decimals: 18,
			want:     "1.1",
		},
		{
			name:     "amount beyond 64-bit range",
			raw:      "123456789012345678901234567890",
			decimals: 18,
			want:     "123456789012.34567890123456789",
		},
		{
			name:     "empty raw value",
			raw:      "",
			decimals: 18,
			want:     "0",
		},
		{
			name:     "non-numeric raw value is returned verbatim",
			raw:      "not-a-number",
			decimals: 18,
			want:     "not-a-number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Transfer{RawValue: tt.raw, TokenDecimals: tt.decimals}
			assert.Equal(t, tt.want, tr.HumanAmount())
		})
	}
}

func TestHumanAmountPreservesRawValue(t *testing.T) {
	t.Run("raw value is not modified by formatting", func(t *testing.T) {
		tr := Transfer{RawValue: "123456789012345678901234567890", TokenDecimals: 18}

		_ = tr.HumanAmount()

		assert.Equal(t, "123456789012345678901234567890", tr.RawValue)
	})

	t.Run("formatting is consistent across calls", func(t *testing.T) {
		tr := Transfer{RawValue: "1500000", TokenDecimals: 6}

		first := tr.HumanAmount()
		second := tr.HumanAmount()

		assert.Equal(t, first, second)
	})
}

func TestDirection(t *testing.T) {
	wallet := "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0"
	other := "0x0000000000000000000000000000000000000001"

	tests := []struct {
		name string
		from string
		to   string
		want Direction
	}{
		{
			name: "incoming transfer",
			from: other,
			to:   wallet,
			want: DirectionIn,
		},
		{
			name: "outgoing transfer",
			from: wallet,
			to:   other,
			want: DirectionOut,
		},
		{
			name: "self transfer",
			from: wallet,
			to:   wallet,
			want: DirectionSelf,
		},
		{
			name: "casing differences are ignored",
			from: "0x742D35CC6634C0532925A3B844BC9E7595F0BEB0",
			to:   other,
			want: DirectionOut,
		},
		{
			name: "unrelated endpoints default to incoming",
			from: other,
			to:   "0x0000000000000000000000000000000000000002",
			want: DirectionIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Transfer{From: tt.from, To: tt.to}
			assert.Equal(t, tt.want, tr.Direction(wallet))
		})
	}
}

func TestSortByTimeDesc(t *testing.T) {
	t.Run("orders newest first", func(t *testing.T) {
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		transfers := []Transfer{
			{TxHash: "0xaa", Timestamp: base},
			{TxHash: "0xbb", Timestamp: base.Add(2 * time.Hour)},
			{TxHash: "0xcc", Timestamp: base.Add(time.Hour)},
		}

		SortByTimeDesc(transfers)

		assert.Equal(t, "0xbb", transfers[0].TxHash)
		assert.Equal(t, "0xcc", transfers[1].TxHash)
		assert.Equal(t, "0xaa", transfers[2].TxHash)
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		var transfers []Transfer

		SortByTimeDesc(transfers)

		assert.Empty(t, transfers)
	})
}
