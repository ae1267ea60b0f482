// Package refresh renews an aging session token in the background.
// A refresh is fire-and-forget: the triggering navigation never waits
// for it, and a failed refresh leaves the current token in place, which
// is still valid by construction of the renewal policy.
package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hienao/openlist-strm/internal/session"
)

// TokenRefresher exchanges a still-valid token for a fresh one.
// Implemented by client.Client.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, current string) (string, error)
}

// Refresher replaces the stored token once a renewal is due. At most
// one refresh is in flight at a time; overlapping triggers from rapid
// repeated navigations no-op.
type Refresher struct {
	source  TokenRefresher
	store   session.Store
	timeout time.Duration

	inflight atomic.Bool
}

func New(source TokenRefresher, store session.Store) *Refresher {
	return &Refresher{
		source:  source,
		store:   store,
		timeout: 30 * time.Second,
	}
}

// TriggerAsync starts a background refresh and returns immediately.
// The spawned task detaches from the caller's context: a navigation
// completing early must not cancel the exchange, and a late store
// update is safe because token writes are whole-value, last-write-wins.
func (r *Refresher) TriggerAsync(ctx context.Context) {
	current, ok := r.store.Token()
	if !ok {
		return
	}
	if !r.inflight.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer r.inflight.Store(false)

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.refresh(ctx, current); err != nil {
			// the old token stays active; nothing fatal
			log.Warn().Err(err).Msg("background token refresh failed")
		}
	}()
}

// Refresh performs a synchronous token exchange and store update. The
// CLI uses it for an explicit, awaited refresh.
func (r *Refresher) Refresh(ctx context.Context) error {
	current, ok := r.store.Token()
	if !ok {
		return session.ErrNoSession
	}
	return r.refresh(ctx, current)
}

func (r *Refresher) refresh(ctx context.Context, current string) error {
	fresh, err := r.source.RefreshToken(ctx, current)
	if err != nil {
		return err
	}
	if err := r.store.SetToken(fresh); err != nil {
		return err
	}
	log.Debug().Msg("session token refreshed")
	return nil
}
