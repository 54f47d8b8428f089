// Package remote implements the HTTP client for the upstream museum
// catalog service.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/softgrove/vitrine/internal/museum"
)

// defaultTimeout is used when no timeout option is provided.
const defaultTimeout = 30 * time.Second

// ErrUnavailable indicates a transport failure, timeout, or non-OK
// response from the catalog service.
var ErrUnavailable = errors.New("remote: catalog unavailable")

// ErrBadPayload indicates the catalog service returned a response body
// that could not be decoded.
var ErrBadPayload = errors.New("remote: malformed catalog payload")

// Client fetches catalog listings from a single endpoint.
// It performs no caching and no retries; each call is one GET.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the given catalog endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchObjects performs one GET against the catalog endpoint and decodes
// the JSON array of objects. Cancellation is cooperative via ctx.
func (c *Client) FetchObjects(ctx context.Context) ([]museum.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: building request for %s: %w", c.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	var objects []museum.Object
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return objects, nil
}
