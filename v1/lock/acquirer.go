package lock

import (
	"context"
	"errors"
	"time"

	"github.com/latchkit/go-latch/v1/coordinator"
	"github.com/latchkit/go-latch/v1/lifecycle"
)

// DefaultBackoff is the base retry delay. Attempt i sleeps i times this
// value, so contention grows the delay linearly.
const DefaultBackoff = 250 * time.Millisecond

// Acquirer performs bounded-retry acquisition of named distributed locks.
type Acquirer struct {
	backend coordinator.Backend
	hub     *lifecycle.Hub
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithBackoff overrides the base retry delay.
func WithBackoff(d time.Duration) AcquirerOption {
	return func(a *Acquirer) {
		if d > 0 {
			a.backoff = d
		}
	}
}

// NewAcquirer returns an Acquirer over the given backend. hub may be nil.
func NewAcquirer(b coordinator.Backend, hub *lifecycle.Hub, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		backend: b,
		hub:     hub,
		backoff: DefaultBackoff,
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire claims the lock named key, backed by a lease of ttl so the lock
// self-expires if the holder crashes. It retries on contention with linear
// backoff until maxWait elapses, then fails with a WaitExceededError.
//
// The budget is checked only at the top of the loop: maxWait = 0 makes
// zero attempts and times out immediately, and the reported wait may
// exceed maxWait by up to one backoff interval. Only contention is
// retried; any other backend failure aborts at once. An in-flight acquire
// call is never cancelled, but the backoff sleep honors ctx.
func (a *Acquirer) Acquire(ctx context.Context, key string, ttl, maxWait time.Duration) (*Handle, error) {
	a.hub.EmitStart(lifecycle.Info{Method: lifecycle.MethodAcquireLock, Key: key, TTL: ttl})
	start := time.Now()
	attempt := 0
	for time.Since(start) < maxWait {
		attempt++
		token, err := a.backend.AcquireLock(ctx, key, ttl)
		if err == nil {
			waited := time.Since(start)
			a.hub.EmitFinish(lifecycle.Info{
				Method:  lifecycle.MethodAcquireLock,
				Key:     key,
				Status:  lifecycle.StatusAcquired,
				TTL:     ttl,
				Elapsed: waited,
			})
			return &Handle{
				Key:        key,
				TTL:        ttl,
				AcquiredAt: time.Now(),
				Waited:     waited,
				state:      Acquired,
				token:      token,
			}, nil
		}
		if !errors.Is(err, coordinator.ErrContention) {
			a.hub.EmitFinish(lifecycle.Info{
				Method:  lifecycle.MethodAcquireLock,
				Key:     key,
				Status:  lockErrorStatus(err),
				TTL:     ttl,
				Elapsed: time.Since(start),
			})
			return nil, err
		}
		if err := a.sleep(ctx, a.backoff*time.Duration(attempt)); err != nil {
			a.hub.EmitFinish(lifecycle.Info{
				Method:  lifecycle.MethodAcquireLock,
				Key:     key,
				Status:  lifecycle.StatusLockError,
				TTL:     ttl,
				Elapsed: time.Since(start),
			})
			return nil, err
		}
	}
	waited := time.Since(start)
	a.hub.EmitFinish(lifecycle.Info{
		Method:  lifecycle.MethodAcquireLock,
		Key:     key,
		Status:  lifecycle.StatusTimeout,
		TTL:     ttl,
		Elapsed: waited,
	})
	return nil, &WaitExceededError{Key: key, Waited: waited}
}

func lockErrorStatus(err error) string {
	var coder coordinator.Coder
	if errors.As(err, &coder) {
		return coder.StatusCode()
	}
	return lifecycle.StatusLockError
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
