// Package sweeper runs the periodic job that removes events whose date
// has passed from public visibility.
package sweeper

import (
	"context"
	"log"
	"time"
)

// EventUnpublisher is the store operation that hides expired events.
type EventUnpublisher interface {
	UnpublishExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenPurger deletes long-expired refresh tokens.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, grace time.Duration) (int64, error)
}

// tokenPurgeGrace is how long expired refresh tokens are kept before
// deletion, so recently expired sessions remain inspectable.
const tokenPurgeGrace = 7 * 24 * time.Hour

// Sweeper unpublishes expired events and purges stale refresh tokens
// on a fixed interval.  A failed sweep is logged and retried on the
// next tick; both store operations are idempotent, so overlapping or
// repeated sweeps are harmless.
type Sweeper struct {
	events   EventUnpublisher
	tokens   TokenPurger
	interval time.Duration
	now      func() time.Time
}

// New returns a Sweeper that runs every interval.  tokens may be nil
// when refresh-token cleanup is not wanted.
func New(events EventUnpublisher, tokens TokenPurger, interval time.Duration) *Sweeper {
	return &Sweeper{
		events:   events,
		tokens:   tokens,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately, then on every tick until ctx is
// cancelled.  Intended to be launched as a goroutine at startup.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.events.UnpublishExpired(ctx, s.now())
	if err != nil {
		log.Printf("sweeper: unpublish expired events failed: %v", err)
	} else if n > 0 {
		log.Printf("sweeper: unpublished %d expired event(s)", n)
	}

	if s.tokens == nil {
		return
	}
	purged, err := s.tokens.PurgeExpired(ctx, tokenPurgeGrace)
	if err != nil {
		log.Printf("sweeper: purge refresh tokens failed: %v", err)
	} else if purged > 0 {
		log.Printf("sweeper: purged %d expired refresh token(s)", purged)
	}
}
