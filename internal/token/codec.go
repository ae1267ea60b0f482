// Package token decodes session tokens and decides their lifecycle:
// whether a held token is still usable and whether it should be renewed
// ahead of expiry. Decoding is purely structural; signature verification
// is the server's job.
package token

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
)

// ErrMalformedToken indicates a token that cannot be decoded into the
// three-segment compact form with a parseable claims payload.
var ErrMalformedToken = fmt.Errorf("malformed token")

// Claims holds the decoded payload segment of a session token.
// ExpiresAt and IssuedAt are nil when the server omitted the claim.
type Claims struct {
	Subject   string `mapstructure:"sub"`
	IssuedAt  *int64 `mapstructure:"iat"`
	ExpiresAt *int64 `mapstructure:"exp"`

	// Raw contains every claim as decoded, for callers that need more
	// than the lifecycle fields.
	Raw map[string]any `mapstructure:"-"`
}

// ExpiryTime returns the expiry instant and whether the claim was present.
func (c *Claims) ExpiryTime() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return time.Unix(*c.ExpiresAt, 0), true
}

// Decode splits raw into its three dot-separated segments and parses the
// base64url-encoded middle segment as JSON claims. It performs no I/O and
// never mutates any state; repeated calls on the same input yield the
// same result.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformedToken
	}

	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(segments))
	}

	payload, err := jwt.NewParser().DecodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding claims segment: %v", ErrMalformedToken, err)
	}

	var rawClaims map[string]any
	if err := json.Unmarshal(payload, &rawClaims); err != nil {
		return nil, fmt.Errorf("%w: parsing claims: %v", ErrMalformedToken, err)
	}

	claims := Claims{Raw: rawClaims}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &claims,
		WeaklyTypedInput: true, // JSON numbers arrive as float64
	})
	if err != nil {
		return nil, fmt.Errorf("building claims decoder: %w", err)
	}
	if err := dec.Decode(rawClaims); err != nil {
		return nil, fmt.Errorf("%w: mapping claims: %v", ErrMalformedToken, err)
	}

	return &claims, nil
}
