// Package agentbay is the client SDK for the AgentBay cloud agent session
// platform. A Client creates and manages remote ephemeral sessions, executes
// commands and code inside them, manipulates their files, and syncs
// persistent storage contexts in and out of their filesystems.
package agentbay

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentbay/agentbay-go/pkg/agentbay/api"
	"github.com/agentbay/agentbay-go/pkg/agentbay/session"
	"github.com/agentbay/agentbay-go/pkg/agentbay/storage"
)

// Client is the top-level SDK entry point.
type Client struct {
	Sessions *session.Manager
	Contexts *storage.Service

	api    *api.Client
	logger logr.Logger
}

type clientConfig struct {
	endpoint   string
	region     string
	httpClient *http.Client
	logger     logr.Logger
	registerer prometheus.Registerer
	maxRetries uint64
	credential api.CredentialProvider
}

// Option configures a Client.
type Option func(*clientConfig)

// WithEndpoint overrides the backend endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *clientConfig) { c.endpoint = endpoint }
}

// WithRegion selects the backend region.
func WithRegion(region string) Option {
	return func(c *clientConfig) { c.region = region }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithLogger attaches a logger to the client and its services.
func WithLogger(logger logr.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithMetrics registers per-action call metrics against the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) { c.registerer = reg }
}

// WithMaxRetries sets the transport retry budget for idempotent calls.
func WithMaxRetries(n uint64) Option {
	return func(c *clientConfig) { c.maxRetries = n }
}

// WithCredential supplies a credential provider directly, for rotating
// file-backed credentials.
func WithCredential(credential api.CredentialProvider) Option {
	return func(c *clientConfig) { c.credential = credential }
}

// NewClient creates a new Client. An empty apiKey falls back to the
// AGENTBAY_API_KEY environment variable.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		logger:     logr.Discard(),
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	credential := cfg.credential
	if credential == nil {
		if apiKey != "" {
			credential = api.StaticCredential(apiKey)
		} else {
			var err error
			credential, err = api.CredentialFromEnv()
			if err != nil {
				return nil, err
			}
		}
	}

	apiOpts := []api.ClientOption{
		api.WithLogger(cfg.logger),
		api.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.endpoint != "" {
		apiOpts = append(apiOpts, api.WithEndpoint(cfg.endpoint))
	}
	if cfg.region != "" {
		apiOpts = append(apiOpts, api.WithRegion(cfg.region))
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	if cfg.registerer != nil {
		apiOpts = append(apiOpts, api.WithMetrics(api.NewMetrics(cfg.registerer)))
	}

	apiClient := api.NewClient(credential, apiOpts...)

	return &Client{
		Sessions: session.NewManager(apiClient, session.WithLogger(cfg.logger)),
		Contexts: storage.NewService(apiClient),
		api:      apiClient,
		logger:   cfg.logger,
	}, nil
}

// Create provisions a new remote session. See session.Manager.Create.
func (c *Client) Create(ctx context.Context, params *session.CreateSessionParams) (*session.SessionResult, error) {
	return c.Sessions.Create(ctx, params)
}

// Get recovers a session by id. See session.Manager.Get.
func (c *Client) Get(ctx context.Context, sessionID string) (*session.SessionResult, error) {
	return c.Sessions.Get(ctx, sessionID)
}

// List returns the locally known sessions. See session.Manager.List.
func (c *Client) List() []*session.Session {
	return c.Sessions.List()
}

// ListByLabels queries the backend for sessions matching labels. See
// session.Manager.ListByLabels.
func (c *Client) ListByLabels(ctx context.Context, params *session.ListSessionParams) (*session.SessionListResult, error) {
	return c.Sessions.ListByLabels(ctx, params)
}

// Delete releases a remote session. See session.Manager.Delete.
func (c *Client) Delete(ctx context.Context, s *session.Session, syncContext bool) (*session.DeleteResult, error) {
	return c.Sessions.Delete(ctx, s, syncContext)
}
