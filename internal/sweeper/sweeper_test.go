package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (s *recordingStore) UnpublishExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, now)
	if s.err != nil {
		return 0, s.err
	}
	return 1, nil
}

func (s *recordingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingPurger struct {
	mu     sync.Mutex
	graces []time.Duration
	err    error
}

func (p *recordingPurger) PurgeExpired(_ context.Context, grace time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.graces = append(p.graces, grace)
	if p.err != nil {
		return 0, p.err
	}
	return 2, nil
}

func TestSweeperRunsImmediatelyAndOnTicks(t *testing.T) {
	store := &recordingStore{}
	sw := New(store, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.callCount() >= 3 },
		time.Second, time.Millisecond, "expected an immediate sweep plus ticks")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}

func TestSweeperKeepsRunningAfterFailure(t *testing.T) {
	store := &recordingStore{err: errors.New("db gone")}
	sw := New(store, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sw.Run(ctx)

	require.Eventually(t, func() bool { return store.callCount() >= 2 },
		time.Second, time.Millisecond, "failed sweeps must not stop the loop")
}

func TestSweeperPassesCurrentTime(t *testing.T) {
	store := &recordingStore{}
	sw := New(store, nil, time.Hour)
	fixed := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	sw.now = func() time.Time { return fixed }

	sw.sweep(context.Background())

	require.Equal(t, 1, store.callCount())
	assert.Equal(t, fixed, store.calls[0])
}

func TestSweeperPurgesTokens(t *testing.T) {
	store := &recordingStore{}
	purger := &recordingPurger{}
	sw := New(store, purger, time.Hour)

	sw.sweep(context.Background())

	require.Len(t, purger.graces, 1)
	assert.Equal(t, tokenPurgeGrace, purger.graces[0])
}

func TestSweeperUnpublishesEvenWhenPurgeFails(t *testing.T) {
	store := &recordingStore{}
	purger := &recordingPurger{err: errors.New("db gone")}
	sw := New(store, purger, time.Hour)

	sw.sweep(context.Background())
	sw.sweep(context.Background())

	assert.Equal(t, 2, store.callCount())
}
