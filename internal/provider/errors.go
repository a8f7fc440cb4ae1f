package provider

import "fmt"

// ConfigError reports that a provider was invoked without the credential it
// needs. It is returned before any network call is attempted.
type ConfigError struct {
	Credential string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Credential)
}

// HTTPError reports a request that reached the provider but came back with a
// non-success status. Body carries the response text verbatim so callers can
// log exactly what the provider said.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// ProviderError reports a response that arrived with a success status but a
// payload the provider marked as failed or that matched no known shape.
// Result holds the raw result field for diagnosis.
type ProviderError struct {
	Message string
	Result  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s (result: %s)", e.Message, e.Result)
}
