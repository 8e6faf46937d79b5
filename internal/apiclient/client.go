// Package apiclient issues JSON requests against the recipe backend.
// All composables share one Client built from the process configuration.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Client sends requests to {baseURL}{path}.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for baseURL. No request timeout is applied; callers
// bound requests through the context.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a Client from the resolved process configuration.
func NewFromConfig(cfg types.Config, opts ...Option) (*Client, error) {
	base, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}
	return New(base, opts...), nil
}

// BaseURL returns the API base every path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Logger returns the client's logger so composables log through the same sink.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do sends method {base}{path} with body encoded as JSON when non-nil. A
// non-2xx status is not an error at this level; only transport failures
// return a *types.NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.NetworkError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		// A body that cannot be read is treated as empty.
		c.logger.Debug("api response body unreadable", "url", url, "error", err)
		data = nil
	}

	c.logger.Debug("api response", "method", method, "url", url, "status", resp.StatusCode, "bytes", len(data))

	return &Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Body:       data,
	}, nil
}

// GetJSON fetches path and decodes the body strictly. A non-2xx status
// fails with "HTTP {status} for {path}".
func (c *Client) GetJSON(ctx context.Context, path string) (*types.Object, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &types.RequestError{
			StatusCode: resp.StatusCode,
			Status:     resp.StatusText,
			Message:    fmt.Sprintf("HTTP %d for %s", resp.StatusCode, path),
		}
	}
	return DecodeStrict(resp.Body)
}

// statusText strips the numeric code from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
