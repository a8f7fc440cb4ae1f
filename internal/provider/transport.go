package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultTimeout = 30 * time.Second

// newHTTPClient builds the HTTP client the providers share. Retries stay
// off: a failed call has to surface immediately so the fetcher can decide
// whether to fall back to the other provider instead of hammering the same
// endpoint.
func newHTTPClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 0
	client.CheckRetry = func(_ context.Context, _ *http.Response, err error) (bool, error) {
		return false, err
	}
	client.HTTPClient.Timeout = timeout
	return client
}

// fetchJSON performs a GET against the given URL and decodes the JSON
// response into out. A non-2xx response is returned as *HTTPError with the
// body text kept verbatim; transport failures pass through unchanged.
func fetchJSON(ctx context.Context, client *retryablehttp.Client, url string, header http.Header, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return &HTTPError{Status: res.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
