package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"

	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"
)

const DefaultEndpoint = "https://api.agentbay.cloud"

// Caller issues action calls against the backend. Implemented by Client and by
// test doubles.
type Caller interface {
	Call(ctx context.Context, action string, params any, out any) (*CallResult, error)
	CallIdempotent(ctx context.Context, action string, params any, out any) (*CallResult, error)
}

// Client is the HTTP transport shared by all SDK services.
type Client struct {
	endpoint   string
	region     string
	credential CredentialProvider
	httpClient *http.Client
	logger     logr.Logger
	metrics    *Metrics
	maxRetries uint64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the backend endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithRegion selects the backend region.
func WithRegion(region string) ClientOption {
	return func(c *Client) { c.region = region }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger; call traces are emitted at V(1).
func WithLogger(logger logr.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics attaches call metrics.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithMaxRetries sets the retry budget for idempotent calls that fail at the
// transport level. Zero disables retries.
func WithMaxRetries(n uint64) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient creates a new transport Client
func NewClient(credential CredentialProvider, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		credential: credential,
		httpClient: &http.Client{},
		logger:     logr.Discard(),
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call issues a single action call. The returned CallResult reports the
// backend's logical outcome; a non-nil error means the call never produced a
// decodable envelope (network failure, bad status, malformed body).
func (c *Client) Call(ctx context.Context, action string, params any, out any) (*CallResult, error) {
	start := time.Now()
	result, err := c.call(ctx, action, params, out)
	c.record(action, result, err, time.Since(start))
	return result, err
}

// CallIdempotent behaves like Call but retries transport-level failures with
// exponential backoff. Logical failures reported by the backend are not
// retried.
func (c *Client) CallIdempotent(ctx context.Context, action string, params any, out any) (*CallResult, error) {
	start := time.Now()

	var result *CallResult
	op := func() error {
		var err error
		result, err = c.call(ctx, action, params, out)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	err := backoff.Retry(op, b)
	c.record(action, result, err, time.Since(start))
	return result, err
}

func (c *Client) call(ctx context.Context, action string, params any, out any) (*CallResult, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeTransport, "failed to marshal request", err)
	}

	url := fmt.Sprintf("%s/api/v1/%s", c.endpoint, action)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeTransport, "failed to create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	c.addAuthHeaders(httpReq)

	c.logger.V(1).Info("calling backend", "action", action)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeTransport, "failed to send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apperrors.New(apperrors.ErrCodeTransport,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var raw rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeTransport, "failed to decode response", err)
	}

	result := &CallResult{
		RequestID:    raw.RequestID,
		Success:      raw.Success,
		Code:         raw.Code,
		ErrorMessage: raw.ErrorMessage,
	}

	if raw.Success && out != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, out); err != nil {
			return nil, apperrors.New(apperrors.ErrCodeTransport, "failed to decode response data", err)
		}
	}

	c.logger.V(1).Info("backend call completed",
		"action", action, "requestId", result.RequestID, "success", result.Success)

	return result, nil
}

func (c *Client) addAuthHeaders(req *http.Request) {
	if c.credential != nil {
		if key := c.credential.APIKey(); key != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", key))
		}
	}
	if c.region != "" {
		req.Header.Set("X-Agentbay-Region", c.region)
	}
}

func (c *Client) record(action string, result *CallResult, err error, elapsed time.Duration) {
	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeTransport
	case result != nil && !result.Success:
		outcome = OutcomeFailure
	}
	c.metrics.observe(action, outcome, elapsed.Seconds())
}
