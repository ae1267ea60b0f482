// Package guard implements the navigation gates: a protected gate that
// requires a usable session before entering application routes, and a
// guest gate that keeps signed-in users away from the sign-in and
// registration pages. Both share the unauthorized recovery procedure
// that decides, via the server's user-existence check, whether a
// recovered visitor belongs on the sign-in or the first-run
// registration page.
package guard

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hienao/openlist-strm/internal/session"
	"github.com/hienao/openlist-strm/internal/token"
)

// Destination names an auth entry point.
type Destination int

const (
	DestSignIn Destination = iota
	DestRegister
)

func (d Destination) String() string {
	if d == DestRegister {
		return "register"
	}
	return "sign-in"
}

// Verdict is the terminal outcome of one gate evaluation. Every
// invocation yields exactly one verdict.
type Verdict int

const (
	// Allow lets the navigation proceed unchanged.
	Allow Verdict = iota
	// AllowAndRefresh proceeds immediately while a background token
	// refresh runs; the navigation never waits for it.
	AllowAndRefresh
	// RedirectSignIn sends the visitor to the sign-in entry point.
	RedirectSignIn
	// RedirectRegister sends the visitor to first-run registration.
	RedirectRegister
	// RedirectHome bounces an already-authenticated visitor off a
	// guest-only page.
	RedirectHome
)

func (v Verdict) String() string {
	switch v {
	case AllowAndRefresh:
		return "allow+refresh"
	case RedirectSignIn:
		return "redirect:sign-in"
	case RedirectRegister:
		return "redirect:register"
	case RedirectHome:
		return "redirect:home"
	default:
		return "allow"
	}
}

// UserChecker answers whether any account exists at all. Implemented
// by client.Client.
type UserChecker interface {
	CheckUserExists(ctx context.Context) (bool, error)
}

// Refresher starts a background token refresh. Implemented by
// refresh.Refresher.
type Refresher interface {
	TriggerAsync(ctx context.Context)
}

// Guard evaluates navigations against the stored session.
type Guard struct {
	store      session.Store
	checker    UserChecker
	refresher  Refresher
	renewAhead time.Duration
	now        func() time.Time
}

type Option func(*Guard)

// WithRenewAhead overrides the proactive renewal window.
func WithRenewAhead(d time.Duration) Option {
	return func(g *Guard) {
		g.renewAhead = d
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

func New(store session.Store, checker UserChecker, refresher Refresher, opts ...Option) *Guard {
	g := &Guard{
		store:      store,
		checker:    checker,
		refresher:  refresher,
		renewAhead: token.DefaultRenewAhead,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Recover is the shared unauthorized recovery procedure: clear the
// session, then decide the entry point from the user-existence check.
// Used by the protected gate and wired into the API client's
// unauthorized handler.
func (g *Guard) Recover(ctx context.Context) Destination {
	if err := g.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("clearing session during recovery")
	}
	return g.entryPoint(ctx)
}

// entryPoint runs the existence check and maps it to a destination.
// A failed check deterministically defaults to sign-in rather than
// leaving the visitor on a dead end.
func (g *Guard) entryPoint(ctx context.Context) Destination {
	exists, err := g.checker.CheckUserExists(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("user existence check failed, defaulting to sign-in")
		return DestSignIn
	}
	if !exists {
		return DestRegister
	}
	return DestSignIn
}

func redirect(d Destination) Verdict {
	if d == DestRegister {
		return RedirectRegister
	}
	return RedirectSignIn
}

// EvalProtected gates entry to a protected route. Checks run in fixed
// order: credential presence, validity, renewal due.
func (g *Guard) EvalProtected(ctx context.Context) Verdict {
	tok, ok := g.store.Token()
	if !ok {
		return redirect(g.entryPoint(ctx))
	}

	now := g.now()
	if !token.IsValid(tok, now, token.GateProtected) {
		return redirect(g.Recover(ctx))
	}

	if token.ShouldRenew(tok, now, g.renewAhead) {
		if g.refresher != nil {
			// explicitly not awaited; rendering must not block on renewal
			g.refresher.TriggerAsync(ctx)
		}
		return AllowAndRefresh
	}

	return Allow
}

// EvalGuest gates entry to a sign-in or registration page. A visitor
// with a valid session is sent home; an invalid or undecodable token is
// cleared (fail closed) and the visitor stays on the auth flow, steered
// between sign-in and registration by the existence check. The
// existence check is informational here, so its failure allows the
// navigation unchanged.
func (g *Guard) EvalGuest(ctx context.Context, target Destination) Verdict {
	if tok, ok := g.store.Token(); ok {
		if token.IsValid(tok, g.now(), token.GateGuest) {
			return RedirectHome
		}
		if err := g.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("clearing stale session on guest gate")
		}
	}

	exists, err := g.checker.CheckUserExists(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("user existence check failed on guest gate, allowing")
		return Allow
	}

	switch {
	case exists && target == DestRegister:
		return RedirectSignIn
	case !exists && target == DestSignIn:
		return RedirectRegister
	default:
		return Allow
	}
}
