// Package client is the HTTP gateway to the openlist-strm backend. It
// resolves endpoints against a configured base address, attaches
// default and auth headers, and funnels unauthorized responses through
// a shared recovery hook before handing the error back to the caller.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hienao/openlist-strm/internal/session"
)

// Client talks to the backend API. The base URL comes from runtime
// configuration; call sites never assemble absolute URLs themselves.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          session.Store
	onUnauthorized func(ctx context.Context)
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithStore attaches the credential store consulted by authenticated
// calls. Without a store, AuthenticatedCall always fails with
// ErrNoCredential.
func WithStore(st session.Store) Option {
	return func(c *Client) {
		c.store = st
	}
}

// WithUnauthorizedHandler registers the recovery hook invoked when the
// server rejects the current credential. The hook runs before the error
// is returned, so global session state is already cleaned up by the
// time the caller's own error handling observes the failure.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for the given API base, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// endpointURL joins the base with endpoint, normalizing to exactly one
// separator so "/auth/refresh" and "auth/refresh" resolve identically.
func (c *Client) endpointURL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}
