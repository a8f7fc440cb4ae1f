package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tokentrail/tokentrail/internal/transfer"
)

// DefaultCovalentBaseURL is the public Covalent API host.
const DefaultCovalentBaseURL = "https://api.covalenthq.com"

// Covalent fetches transfer history from the Covalent transfers_v2 endpoint.
// The API key travels in a bearer Authorization header and the payload nests
// token transfer events inside their parent transactions, so normalization
// flattens each event into its own record.
type Covalent struct {
	apiKey     string
	baseURL    string
	httpClient *retryablehttp.Client
}

var _ TransferSource = (*Covalent)(nil)

// CovalentOption customizes a Covalent client.
type CovalentOption func(*Covalent)

// WithCovalentBaseURL points the client at a different API host, typically a
// test server.
func WithCovalentBaseURL(base string) CovalentOption {
	return func(c *Covalent) {
		c.baseURL = base
	}
}

// WithCovalentHTTPClient replaces the underlying HTTP client.
func WithCovalentHTTPClient(client *retryablehttp.Client) CovalentOption {
	return func(c *Covalent) {
		c.httpClient = client
	}
}

// NewCovalent builds a Covalent source. An empty apiKey yields a valid but
// unconfigured source that refuses to fetch.
func NewCovalent(apiKey string, opts ...CovalentOption) *Covalent {
	c := &Covalent{
		apiKey:     apiKey,
		baseURL:    DefaultCovalentBaseURL,
		httpClient: newHTTPClient(defaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured implements TransferSource.
func (c *Covalent) Configured() bool {
	return c.apiKey != ""
}

type covalentTransfersResponse struct {
	Data struct {
		Items []covalentItem `json:"items"`
	} `json:"data"`
}

// covalentItem is one transaction; it can carry several token transfer
// events which all share the transaction's hash and block time.
type covalentItem struct {
	BlockSignedAt string             `json:"block_signed_at"`
	TxHash        string             `json:"tx_hash"`
	Transfers     []covalentTransfer `json:"transfers"`
}

type covalentTransfer struct {
	FromAddress          string `json:"from_address"`
	ToAddress            string `json:"to_address"`
	ContractTickerSymbol string `json:"contract_ticker_symbol"`
	ContractName         string `json:"contract_name"`
	ContractAddress      string `json:"contract_address"`
	ContractDecimals     *int   `json:"contract_decimals"`
	Delta                string `json:"delta"`
}

// TokenTransfers implements TransferSource.
func (c *Covalent) TokenTransfers(ctx context.Context, address string, opts Options) ([]transfer.Transfer, error) {
	if !c.Configured() {
		return nil, &ConfigError{Credential: "Covalent API key"}
	}

	opts = opts.withDefaults()

	endpoint := fmt.Sprintf("%s/v1/%d/address/%s/transfers_v2/?page-size=%d",
		c.baseURL, opts.ChainID, url.PathEscape(address), opts.PageSize)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	var res covalentTransfersResponse
	if err := fetchJSON(ctx, c.httpClient, endpoint, header, &res); err != nil {
		return nil, fmt.Errorf("covalent: %w", err)
	}

	records := make([]transfer.Transfer, 0, len(res.Data.Items))
	for _, item := range res.Data.Items {
		records = append(records, item.normalize()...)
	}
	return records, nil
}

// normalize flattens the item's nested transfer events into canonical
// records. Addresses keep the casing Covalent returned.
func (it covalentItem) normalize() []transfer.Transfer {
	ts := parseBlockTime(it.BlockSignedAt)

	records := make([]transfer.Transfer, 0, len(it.Transfers))
	for _, event := range it.Transfers {
		records = append(records, transfer.Transfer{
			Source:          transfer.SourceCovalent,
			TxHash:          it.TxHash,
			Timestamp:       ts,
			From:            event.FromAddress,
			To:              event.ToAddress,
			TokenSymbol:     event.ContractTickerSymbol,
			TokenName:       event.ContractName,
			ContractAddress: event.ContractAddress,
			// delta is kept verbatim; whether Covalent pre-scales it is a
			// documented upstream ambiguity, so no conversion happens here.
			RawValue:      event.Delta,
			TokenDecimals: decimalsOrDefault(event.ContractDecimals),
		})
	}
	return records
}

func parseBlockTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now().UTC()
	}
	return ts.UTC()
}

func decimalsOrDefault(decimals *int) int {
	if decimals == nil || *decimals < 0 {
		return defaultTokenDecimals
	}
	return *decimals
}
