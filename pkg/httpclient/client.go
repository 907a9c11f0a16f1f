package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers; the podcast platform serves
	// the full episode list only to requests that look like a browser.
	BrowserClient ClientType = "browser"

	// JSONClient uses the browser User-Agent but asks for JSON.
	// Used for the structured API endpoints.
	JSONClient ClientType = "json"
)

// DefaultUserAgent is the conventional desktop browser User-Agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout is the per-request ceiling used when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Config holds the knobs shared by every request made through a client.
type Config struct {
	// Timeout bounds each request, including reading the body.
	Timeout time.Duration

	// MaxRetries re-attempts network errors and 5xx responses.
	// Zero means a single attempt.
	MaxRetries int

	// UserAgent overrides DefaultUserAgent.
	UserAgent string
}

// HTTPClient wraps an http.Client with configuration
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	cfg        Config
}

// Option customizes a single request.
type Option func(*http.Request)

// WithReferer sets the Referer header.
func WithReferer(referer string) Option {
	return func(req *http.Request) {
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
	}
}

// WithAccept overrides the Accept header chosen by the client type.
func WithAccept(accept string) Option {
	return func(req *http.Request) {
		req.Header.Set("Accept", accept)
	}
}

// NewClient creates a new HTTP client with the specified type
func NewClient(clientType ClientType, cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
		cfg:        cfg,
	}
}

// Timeout returns the per-request ceiling in effect.
func (c *HTTPClient) Timeout() time.Duration {
	return c.cfg.Timeout
}

// Get fetches rawURL and returns the full body of a 2xx response.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, opts ...Option) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		body, retry, err := c.get(ctx, rawURL, opts)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// Download streams the body of rawURL into w and returns the bytes written.
// The whole transfer, body included, is bounded by the client Timeout, so
// clients used for large files need a generous one. It is not retried
// since a partial write cannot be undone.
func (c *HTTPClient) Download(ctx context.Context, rawURL string, w io.Writer, opts ...Option) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := c.newRequest(ctx, rawURL, opts)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read body: %w", err)
	}
	return n, nil
}

func (c *HTTPClient) get(ctx context.Context, rawURL string, opts []Option) ([]byte, bool, error) {
	req, err := c.newRequest(ctx, rawURL, opts)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode >= 500, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return body, false, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, rawURL string, opts []Option) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7")

	switch c.clientType {
	case JSONClient:
		req.Header.Set("Accept", "application/json")
	default:
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	}
}

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
