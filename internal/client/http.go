// Package client provides the HTTP JSON client shared by market-data providers.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodySize bounds provider response reads.
const maxBodySize = 4 << 20

// ErrRateLimited is returned for HTTP 429 responses.
var ErrRateLimited = errors.New("rate limited")

// StatusError is a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

// JSONClient issues GET requests against one provider's base URL.
type JSONClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a JSONClient.
type Option func(*JSONClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *JSONClient) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *JSONClient) { c.userAgent = ua }
}

// NewJSONClient creates a client for the named provider with a per-call timeout.
func NewJSONClient(name, baseURL string, timeout time.Duration, opts ...Option) *JSONClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &JSONClient{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "vire-tracker",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *JSONClient) BaseURL() string { return c.baseURL }

// GetRaw performs GET baseURL+path?query and returns the body of a 2xx response.
func (c *JSONClient) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", c.name, redactURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", c.name, ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	return body, nil
}

// redactURL drops the query string, which carries provider API keys, from a
// transport error's URL.
func redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	redacted := *uerr
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		u.Fragment = ""
		u.User = nil
		redacted.URL = u.String()
	} else {
		redacted.URL = ""
	}
	return &redacted
}

// GetJSON performs GET and decodes the JSON body into out.
func (c *JSONClient) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, err := c.GetRaw(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", c.name, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
