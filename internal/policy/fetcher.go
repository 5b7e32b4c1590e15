package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves raw policy documents for a shop.
type Fetcher interface {
	Fetch(ctx context.Context, shopDomain string) ([]RawPolicy, string, error)
}

// HTTPFetcher fetches policies from the shop's REST endpoint.
type HTTPFetcher struct {
	httpClient       *http.Client
	endpointTemplate string
}

// FetcherConfig holds HTTP fetcher configuration.
type FetcherConfig struct {
	// EndpointTemplate is a printf template receiving the shop domain,
	// e.g. "https://%s/policies.json".
	EndpointTemplate string
	Timeout          time.Duration
}

// NewHTTPFetcher creates a policy fetcher.
func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
	if cfg.EndpointTemplate == "" {
		cfg.EndpointTemplate = "https://%s/policies.json"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &HTTPFetcher{
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		endpointTemplate: cfg.EndpointTemplate,
	}
}

// policyPayload is the wire shape of the shop policy endpoint.
type policyPayload struct {
	Policies     []RawPolicy `json:"policies"`
	ContactEmail string      `json:"contactEmail,omitempty"`
}

// Fetch retrieves the shop's policy documents. Non-2xx statuses and
// malformed bodies are errors; the caller decides whether to cache.
func (f *HTTPFetcher) Fetch(ctx context.Context, shopDomain string) ([]RawPolicy, string, error) {
	endpoint := fmt.Sprintf(f.endpointTemplate, shopDomain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch policies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch policies: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	var payload policyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", fmt.Errorf("parse response: %w", err)
	}

	return payload.Policies, payload.ContactEmail, nil
}
