package api

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/ssechat/internal/logger"
	"github.com/diogo/ssechat/internal/models"
	"github.com/diogo/ssechat/internal/sse"
)

// HTTPDoer is the part of an HTTP client the stream client needs.
// tls_client.HttpClient satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client opens one streamed POST per chat turn and decodes its frames.
// It never touches conversation state.
type Client struct {
	httpClient   HTTPDoer
	endpoint     string
	headers      map[string]string
	maxFrameSize int
	timeout      time.Duration
	proxy        string
	logger       *slog.Logger
	mu           sync.RWMutex
	closed       bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithEndpoint sets the URL every turn is posted to
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient replaces the TLS client, mostly for tests
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithLogger sets the logger used for stream diagnostics
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMaxFrameSize caps the partial frame buffered between chunks.
// A value <= 0 disables the cap.
func WithMaxFrameSize(n int) ClientOption {
	return func(c *Client) {
		c.maxFrameSize = n
	}
}

// WithHeaders adds or overrides request headers
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		maps.Copy(c.headers, headers)
	}
}

// WithTimeout bounds a whole request, body included. 0 disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithProxy routes requests through the given proxy URL
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxy = proxyURL
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint:     models.EndpointStream,
		headers:      models.DefaultHeaders(),
		maxFrameSize: sse.DefaultMaxBufferSize,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.logger = logger.OrNop(client.logger)

	if client.httpClient == nil {
		// Chrome profile keeps the TLS fingerprint of a regular browser
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		if client.proxy != "" {
			options = append(options, tls_client.WithProxyUrl(client.proxy))
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the URL turns are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close marks the client closed; later turns fail with ErrClientClosed
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
