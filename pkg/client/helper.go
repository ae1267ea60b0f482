package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// ErrNoCredential is returned when an authenticated call is attempted
// with no stored token. The gateway never silently downgrades to an
// unauthenticated request.
var ErrNoCredential = fmt.Errorf("no credential stored")

// ErrUnauthorized marks a server-side rejection of the current
// credential. APIError wraps it when the status is 401, so callers can
// match with errors.Is.
var ErrUnauthorized = fmt.Errorf("unauthorized")

// APIError is a failure reported by the backend, either as a non-2xx
// HTTP status or as an error code in the response envelope.
type APIError struct {
	StatusCode    int
	Code          int
	Message       string
	CorrelationID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: '%s' (code %d, correlation: %s)", e.Message, e.code(), e.CorrelationID)
}

func (e *APIError) Unwrap() error {
	if e.code() == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

func (e *APIError) code() int {
	if e.Code != 0 {
		return e.Code
	}
	return e.StatusCode
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CallOptions shape a single request. Caller headers win over the
// default header set on conflict.
type CallOptions struct {
	Method  string
	Headers map[string]string
	Body    any
}

// Call performs a request against the configured base. Transport and
// parsing failures are logged and returned. A 401 on either the HTTP
// status or the envelope code first runs the unauthorized recovery
// hook and then still returns the error, so the caller's own handling
// sees the failure.
func (c *Client) Call(ctx context.Context, endpoint string, opts CallOptions) (json.RawMessage, error) {
	return c.call(ctx, endpoint, opts, "")
}

// AuthenticatedCall reads the credential store and performs the request
// with an Authorization bearer header merged ahead of caller headers; a
// caller-supplied Authorization header still wins.
func (c *Client) AuthenticatedCall(ctx context.Context, endpoint string, opts CallOptions) (json.RawMessage, error) {
	if c.store == nil {
		return nil, ErrNoCredential
	}
	tok, ok := c.store.Token()
	if !ok {
		return nil, ErrNoCredential
	}
	return c.call(ctx, endpoint, opts, tok)
}

func (c *Client) call(ctx context.Context, endpoint string, opts CallOptions, authToken string) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	url := c.endpointURL(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// defaults first, then the bearer, then caller headers on top
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", xid.New().String())
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("api call failed")
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, c.apiError(ctx, &APIError{
				StatusCode:    resp.StatusCode,
				Message:       fmt.Sprintf("unparsed response: %s", truncateBody(raw)),
				CorrelationID: resp.Header.Get("X-Correlation-ID"),
			})
		}
		log.Debug().Err(err).Str("url", url).Msg("undecodable api response")
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= 400 || env.Code >= 400 {
		return nil, c.apiError(ctx, &APIError{
			StatusCode:    resp.StatusCode,
			Code:          env.Code,
			Message:       env.Message,
			CorrelationID: resp.Header.Get("X-Correlation-ID"),
		})
	}

	return env.Data, nil
}

// apiError routes 401s through the recovery hook before returning.
func (c *Client) apiError(ctx context.Context, apiErr *APIError) error {
	if apiErr.code() == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	return apiErr
}

func truncateBody(raw []byte) string {
	const maxLen = 200
	s := string(raw)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
