package token

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Gate selects the validation default applied when a token cannot be
// decoded or carries no expiry. The two gates deliberately disagree:
// a protected page fails open (the server's 401 path is the final
// authority), while a guest page fails closed so an unparseable token
// can never keep a user "logged in" and away from the sign-in form.
type Gate int

const (
	GateProtected Gate = iota
	GateGuest
)

// DefaultRenewAhead is the proactive renewal window: a token whose
// remaining lifetime falls below this is eagerly exchanged for a fresh
// one while still valid.
const DefaultRenewAhead = 7 * 24 * time.Hour

// IsValid reports whether raw is usable at instant now, applying the
// gate-specific default on decode failure or missing expiry.
func IsValid(raw string, now time.Time, gate Gate) bool {
	if raw == "" {
		return false
	}

	claims, err := Decode(raw)
	if err != nil {
		if gate == GateGuest {
			log.Debug().Err(err).Msg("undecodable token on guest gate, treating as invalid")
			return false
		}
		log.Warn().Err(err).Msg("undecodable token on protected gate, deferring to server")
		return true
	}

	exp, ok := claims.ExpiryTime()
	if !ok {
		if gate == GateGuest {
			return false
		}
		log.Warn().Msg("token carries no exp claim, treating as valid")
		return true
	}

	return exp.After(now)
}

// ShouldRenew reports whether a renewal should be attempted for raw at
// instant now: true iff 0 < exp-now < lead. Both boundaries are strict,
// so a token exactly at expiry (or exactly at the window edge) is never
// renewed.
func ShouldRenew(raw string, now time.Time, lead time.Duration) bool {
	claims, err := Decode(raw)
	if err != nil {
		return false
	}

	exp, ok := claims.ExpiryTime()
	if !ok {
		return false
	}

	remaining := exp.Sub(now)
	return remaining > 0 && remaining < lead
}
