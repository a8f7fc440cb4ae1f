package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tokentrail/tokentrail/internal/transfer"
)

// DefaultEtherscanBaseURL is the public Etherscan API host.
const DefaultEtherscanBaseURL = "https://api.etherscan.io"

// Etherscan fetches transfer history from the account tokentx action. The
// API key travels as a query parameter. The result field changes shape across
// chains and API versions, so parsing tries each known shape in order instead
// of trusting the status flag alone.
type Etherscan struct {
	apiKey     string
	baseURL    string
	httpClient *retryablehttp.Client
}

var _ TransferSource = (*Etherscan)(nil)

// EtherscanOption customizes an Etherscan client.
type EtherscanOption func(*Etherscan)

// WithEtherscanBaseURL points the client at a different API host, typically a
// test server.
func WithEtherscanBaseURL(base string) EtherscanOption {
	return func(e *Etherscan) {
		e.baseURL = base
	}
}

// WithEtherscanHTTPClient replaces the underlying HTTP client.
func WithEtherscanHTTPClient(client *retryablehttp.Client) EtherscanOption {
	return func(e *Etherscan) {
		e.httpClient = client
	}
}

// NewEtherscan builds an Etherscan source. An empty apiKey yields a valid
// but unconfigured source that refuses to fetch.
func NewEtherscan(apiKey string, opts ...EtherscanOption) *Etherscan {
	e := &Etherscan{
		apiKey:     apiKey,
		baseURL:    DefaultEtherscanBaseURL,
		httpClient: newHTTPClient(defaultTimeout),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configured implements TransferSource.
func (e *Etherscan) Configured() bool {
	return e.apiKey != ""
}

// etherscanEnvelope keeps result raw because its type varies: a transaction
// list on success, a bare string on errors such as an invalid key, and
// sometimes it is missing entirely.
type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// etherscanTokenTx carries both hash spellings seen in the wild; the first
// non-empty one wins during normalization.
type etherscanTokenTx struct {
	Hash            string `json:"hash"`
	TransactionHash string `json:"transactionHash"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenName       string `json:"tokenName"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"`
	TokenDecimal    string `json:"tokenDecimal"`
}

var noTransactionsRe = regexp.MustCompile(`(?i)no transactions found`)

// TokenTransfers implements TransferSource.
func (e *Etherscan) TokenTransfers(ctx context.Context, address string, opts Options) ([]transfer.Transfer, error) {
	if !e.Configured() {
		return nil, &ConfigError{Credential: "Etherscan API key"}
	}

	opts = opts.withDefaults()

	query := url.Values{}
	query.Set("chainid", strconv.FormatInt(opts.ChainID, 10))
	query.Set("module", "account")
	query.Set("action", "tokentx")
	query.Set("address", address)
	query.Set("page", strconv.Itoa(opts.Page))
	query.Set("offset", strconv.Itoa(opts.PageSize))
	query.Set("sort", opts.SortOrder)
	query.Set("apikey", e.apiKey)

	var env etherscanEnvelope
	if err := fetchJSON(ctx, e.httpClient, e.baseURL+"/v2/api?"+query.Encode(), nil, &env); err != nil {
		return nil, fmt.Errorf("etherscan: %w", err)
	}

	return env.normalize()
}

// normalize resolves the known result shapes in order: a transaction list
// (the status flag, when present, adds nothing a list does not already
// prove), then the "no transactions found" message that marks an empty but
// successful answer. Anything else becomes a ProviderError carrying the
// message and the raw result.
func (env etherscanEnvelope) normalize() ([]transfer.Transfer, error) {
	var txs []etherscanTokenTx
	if err := json.Unmarshal(env.Result, &txs); err == nil {
		records := make([]transfer.Transfer, 0, len(txs))
		for _, tx := range txs {
			records = append(records, tx.normalize())
		}
		return records, nil
	}

	if noTransactionsRe.MatchString(env.Message) {
		return []transfer.Transfer{}, nil
	}

	return nil, &ProviderError{Message: env.Message, Result: string(env.Result)}
}

func (tx etherscanTokenTx) normalize() transfer.Transfer {
	hash := tx.Hash
	if hash == "" {
		hash = tx.TransactionHash
	}

	return transfer.Transfer{
		Source:          transfer.SourceEtherscan,
		TxHash:          hash,
		Timestamp:       parseUnixSeconds(tx.TimeStamp),
		From:            tx.From,
		To:              tx.To,
		TokenSymbol:     tx.TokenSymbol,
		TokenName:       tx.TokenName,
		ContractAddress: tx.ContractAddress,
		RawValue:        tx.Value,
		TokenDecimals:   parseTokenDecimals(tx.TokenDecimal),
	}
}

func parseUnixSeconds(value string) time.Time {
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(sec, 0).UTC()
}

func parseTokenDecimals(value string) int {
	decimals, err := strconv.Atoi(value)
	if err != nil || decimals < 0 {
		return defaultTokenDecimals
	}
	return decimals
}
