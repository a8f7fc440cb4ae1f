package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokentrail/tokentrail/internal/transfer"
)

// fakeSource scripts one provider's answer and records how often it was hit.
type fakeSource struct {
	configured bool
	records    []transfer.Transfer
	err        error
	calls      int
}

func (s *fakeSource) Configured() bool {
	return s.configured
}

func (s *fakeSource) TokenTransfers(context.Context, string, Options) ([]transfer.Transfer, error) {
	s.calls++
	return s.records, s.err
}

func TestFetchTokenTransfers(t *testing.T) {
	etherscanRecords := []transfer.Transfer{{Source: transfer.SourceEtherscan, TxHash: "0xE"}}
	covalentRecords := []transfer.Transfer{{Source: transfer.SourceCovalent, TxHash: "0xC"}}

	t.Run("no credentials yields an empty list without error", func(t *testing.T) {
		etherscan := &fakeSource{}
		covalent := &fakeSource{}
		fetcher := NewFetcher(etherscan, covalent)

		records, err := fetcher.FetchTokenTransfers(context.Background(), "0xabc", Options{})

		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.Zero(t, etherscan.calls)
		assert.Zero(t, covalent.calls)
	})

	t.Run("etherscan wins when both are configured", func(t *testing.T) {
		etherscan := &fakeSource{configured: true, records: etherscanRecords}
		covalent := &fakeSource{configured: true, records: covalentRecords}
		fetcher := NewFetcher(etherscan, covalent)

		records, err := fetcher.FetchTokenTransfers(context.Background(), "0xabc", Options{})

		require.NoError(t, err)
		assert.Equal(t, etherscanRecords, records)
		assert.Equal(t, 1, etherscan.calls)
		assert.Zero(t, covalent.calls)
	})

	t.Run("falls back to covalent when etherscan fails", func(t *testing.T) {
		etherscan := &fakeSource{configured: true, err: errors.New("etherscan down")}
		covalent := &fakeSource{configured: true, records: covalentRecords}
		fetcher := NewFetcher(etherscan, covalent)

		records, err := fetcher.FetchTokenTransfers(context.Background(), "0xabc", Options{})

		require.NoError(t, err)
		assert.Equal(t, covalentRecords, records)
		assert.Equal(t, 1, etherscan.calls)
		assert.Equal(t, 1, covalent.calls)
	})

	t.Run("fallback failure surfaces covalent's error", func(t *testing.T) {
		covalentErr := errors.New("covalent down")
		etherscan := &fakeSource{configured: true, err: errors.New("etherscan down")}
		covalent := &fakeSource{configured: true, err: covalentErr}
		fetcher := NewFetcher(etherscan, covalent)

		_, err := fetcher.FetchTokenTransfers(context.Background(), "0xabc", Options{})

		assert.ErrorIs(t, err, covalentErr)
	})

	t.Run("etherscan error surfaces unchanged when covalent is unconfigured", func(t *testing.T) {
		etherscanErr := errors.New("etherscan down")
		etherscan := &fakeSource{configured: true, err: etherscanErr}
		covalent := &fakeSource{}
		fetcher := NewFetcher(etherscan, covalent)

		_, err := fetcher.FetchTokenTransfers(context.Background(), "0xabc", Options{})

		assert.Same(t, etherscanErr, err)
		assert.Zero(t, covalent.calls)
	})

	t.Run("covalent alone is queried directly", func(t *testing.T) {
		etherscan := &fakeSource{}
		covalent := &fakeSource{configured: true, records: covalentRecords}
		fetcher := NewFetcher(etherscan, covalent)

		records, err := fetcher.FetchTokenTransfers(context.Background(), "0xabc", Options{})

		require.NoError(t, err)
		assert.Equal(t, covalentRecords, records)
		assert.Zero(t, etherscan.calls)
		assert.Equal(t, 1, covalent.calls)
	})

	t.Run("result only depends on configured credentials", func(t *testing.T) {
		// A failing Etherscan with Covalent fallback must land on the same
		// records as Covalent alone.
		viaFallback := NewFetcher(
			&fakeSource{configured: true, err: errors.New("etherscan down")},
			&fakeSource{configured: true, records: covalentRecords},
		)
		direct := NewFetcher(
			&fakeSource{},
			&fakeSource{configured: true, records: covalentRecords},
		)

		fromFallback, err := viaFallback.FetchTokenTransfers(context.Background(), "0xabc", Options{})
		require.NoError(t, err)
		fromDirect, err := direct.FetchTokenTransfers(context.Background(), "0xabc", Options{})
		require.NoError(t, err)

		assert.Equal(t, fromDirect, fromFallback)
	})
}

func TestHasAnyAPIKey(t *testing.T) {
	tests := []struct {
		name      string
		etherscan bool
		covalent  bool
		want      bool
	}{
		{name: "neither", etherscan: false, covalent: false, want: false},
		{name: "etherscan only", etherscan: true, covalent: false, want: true},
		{name: "covalent only", etherscan: false, covalent: true, want: true},
		{name: "both", etherscan: true, covalent: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := NewFetcher(
				&fakeSource{configured: tt.etherscan},
				&fakeSource{configured: tt.covalent},
			)
			assert.Equal(t, tt.want, fetcher.HasAnyAPIKey())
		})
	}
}
