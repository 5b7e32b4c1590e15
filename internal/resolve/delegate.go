package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
)

// DelegateConfig configures the remote delegation endpoint.
type DelegateConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// DelegateClient forwards whole requests to a remote resolution endpoint.
// Any failure is classified and returned as a *DelegateError so the caller
// can log it and fall through to the local stages.
type DelegateClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     *observability.Logger
}

// NewDelegateClient creates a delegation client. A nil client is returned
// when no endpoint is configured.
func NewDelegateClient(cfg DelegateConfig, logger *observability.Logger) *DelegateClient {
	if cfg.Endpoint == "" {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DelegateClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// Endpoint returns the configured endpoint, masked for logging.
func (c *DelegateClient) Endpoint() string {
	return observability.MaskEndpoint(c.endpoint)
}

// Resolve POSTs the full request to the remote endpoint and returns its
// response. A 2xx body missing the message field is a protocol failure.
func (c *DelegateClient) Resolve(ctx context.Context, req *assist.Request) (*assist.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, c.fail(FailureProtocol, 0, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(FailureProtocol, 0, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(classifyTransport(err), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, c.fail(classifyStatus(resp.StatusCode), resp.StatusCode, fmt.Errorf("unexpected status"))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(FailureConnection, 0, fmt.Errorf("read response: %w", err))
	}

	var out assist.Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, c.fail(FailureProtocol, resp.StatusCode, fmt.Errorf("parse response: %w", err))
	}

	if out.Message == "" {
		return nil, c.fail(FailureProtocol, resp.StatusCode, fmt.Errorf("response missing message field"))
	}

	sanitizeResponse(&out)
	return &out, nil
}

func (c *DelegateClient) fail(class FailureClass, status int, err error) *DelegateError {
	return &DelegateError{
		Class:      class,
		StatusCode: status,
		Endpoint:   c.Endpoint(),
		Err:        err,
	}
}

// sanitizeResponse normalizes a delegated response to the engine's response
// contract: known enum values, non-nil slices, bounded scores.
func sanitizeResponse(resp *assist.Response) {
	resp.MessageType = assist.NormalizeMessageType(string(resp.MessageType))
	if resp.Sentiment != "" {
		resp.Sentiment = assist.NormalizeSentiment(string(resp.Sentiment))
	}
	resp.Confidence = assist.ClampConfidence(resp.Confidence)

	if resp.Recommendations == nil {
		resp.Recommendations = []assist.Recommendation{}
	}
	if len(resp.Recommendations) > assist.MaxRecommendations {
		resp.Recommendations = resp.Recommendations[:assist.MaxRecommendations]
	}
	for i := range resp.Recommendations {
		resp.Recommendations[i].RelevanceScore = assist.ClampScore(resp.Recommendations[i].RelevanceScore)
	}

	if resp.QuickReplies == nil {
		resp.QuickReplies = []string{}
	}
	if resp.SuggestedActions == nil {
		resp.SuggestedActions = []assist.SuggestedAction{}
	}
}
