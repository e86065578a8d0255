package memo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/latchkit/go-latch/v1/coordinator"
	"github.com/latchkit/go-latch/v1/lifecycle"
	"github.com/latchkit/go-latch/v1/lock"
)

// Defaults for Do. A zero TTL option means "do not persist", which is
// distinct from the coordinator's "store without expiry".
const (
	DefaultTTL         = 300 * time.Second
	DefaultLockTTL     = 10 * time.Second
	DefaultLockMaxWait = 30 * time.Second
)

// ComputationError wraps a failure of the user-supplied computation, so
// monitoring can separate "the cached work failed" from coordination
// failures.
type ComputationError struct {
	Key string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("memo: computation for %q failed: %v", e.Key, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// Engine provides lock-guarded, double-checked memoization over the
// coordinator: N concurrent calls for the same key run the computation at
// most once per cache generation and all callers observe the same result.
type Engine[T any] struct {
	client   *coordinator.Client
	acquirer *lock.Acquirer
	releaser *lock.Releaser
	hub      *lifecycle.Hub

	coalesce bool
	group    singleflight.Group
	local    *localCache
}

// EngineOption configures an Engine.
type EngineOption[T any] func(*Engine[T])

// WithCoalescing collapses concurrent in-process callers for the same key
// into a single distributed-lock round trip.
func WithCoalescing[T any]() EngineOption[T] {
	return func(e *Engine[T]) {
		e.coalesce = true
	}
}

// WithLocalCache puts a ristretto read-through cache in front of the
// coordinator's value store. maxCost bounds the cache size in bytes of
// accounted cost; a non-positive value picks a generous default. The local
// copy may outlive a remote clear performed by another process, up to the
// call's TTL; Forget always drops both copies.
func WithLocalCache[T any](maxCost int64) EngineOption[T] {
	return func(e *Engine[T]) {
		e.local = newLocalCache(maxCost)
	}
}

// WithAcquirerOptions forwards options to the engine's lock acquirer.
func WithAcquirerOptions[T any](opts ...lock.AcquirerOption) EngineOption[T] {
	return func(e *Engine[T]) {
		e.acquirer = lock.NewAcquirer(e.client.Backend(), e.client.Lifecycle(), opts...)
	}
}

// New returns an Engine over the given client.
func New[T any](client *coordinator.Client, opts ...EngineOption[T]) *Engine[T] {
	e := &Engine[T]{
		client:   client,
		acquirer: lock.NewAcquirer(client.Backend(), client.Lifecycle()),
		releaser: lock.NewReleaser(client.Backend(), client.Lifecycle()),
		hub:      client.Lifecycle(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do returns the memoized value for key, computing it with fn if no value
// is stored. The value store is read before and after taking the derived
// "<key>-lock" lock, so the computation runs only when both checks miss.
// A successful result is written to "<key>-value" with the call's TTL; a
// zero TTL deliberately skips the write so every generation recomputes,
// still serialized through the lock.
//
// Lock timeouts and coordinator failures propagate as-is and fn never
// runs. A failure of fn itself is wrapped in *ComputationError and nothing
// is written. The lock is released exactly once on every exit path after
// acquisition.
func (e *Engine[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	cfg := callConfig{
		ttl:         DefaultTTL,
		lockTTL:     DefaultLockTTL,
		lockMaxWait: DefaultLockMaxWait,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	valueKey := key + "-value"

	e.hub.EmitStart(lifecycle.Info{Method: lifecycle.MethodMemoize, Key: key, TTL: cfg.ttl})
	start := time.Now()
	finish := func(status string) {
		e.hub.EmitFinish(lifecycle.Info{
			Method:  lifecycle.MethodMemoize,
			Key:     key,
			Status:  status,
			TTL:     cfg.ttl,
			Elapsed: time.Since(start),
		})
	}

	if e.local != nil {
		if v, ok := e.local.get(valueKey); ok {
			finish(lifecycle.StatusValuePreLock)
			return v.(T), nil
		}
	}

	var cached T
	found, err := e.client.Get(ctx, valueKey, &cached)
	if err != nil {
		finish(coordinator.StatusOf(err))
		var zero T
		return zero, err
	}
	if found {
		e.storeLocal(valueKey, cached, cfg.ttl)
		finish(lifecycle.StatusValuePreLock)
		return cached, nil
	}

	var out T
	var status string
	if e.coalesce {
		v, gerr, _ := e.group.Do(key, func() (any, error) {
			r := e.compute(ctx, key, fn, cfg)
			return r, r.err
		})
		r := v.(result[T])
		out, status, err = r.value, r.status, gerr
	} else {
		r := e.compute(ctx, key, fn, cfg)
		out, status, err = r.value, r.status, r.err
	}
	finish(status)
	return out, err
}

type result[T any] struct {
	value  T
	status string
	err    error
}

// compute runs the locked slow path: acquire, re-check, evaluate, write.
func (e *Engine[T]) compute(ctx context.Context, key string, fn func(context.Context) (T, error), cfg callConfig) result[T] {
	lockKey := key + "-lock"
	valueKey := key + "-value"

	h, err := e.acquirer.Acquire(ctx, lockKey, cfg.lockTTL, cfg.lockMaxWait)
	if err != nil {
		status := lifecycle.StatusError
		if errors.Is(err, lock.ErrWaitExceeded) {
			status = lifecycle.StatusTimeout
		}
		return result[T]{status: status, err: err}
	}
	defer e.releaser.Release(ctx, h)

	// Double check: another caller may have written the value while this
	// one was waiting for the lock.
	var cached T
	found, err := e.client.Get(ctx, valueKey, &cached)
	if err != nil {
		return result[T]{status: coordinator.StatusOf(err), err: err}
	}
	if found {
		e.storeLocal(valueKey, cached, cfg.ttl)
		return result[T]{value: cached, status: lifecycle.StatusValuePostLock}
	}

	if cfg.softDeadline > 0 {
		timer := time.AfterFunc(cfg.softDeadline, func() {
			slog.Warn("latch: memoized computation exceeded soft deadline",
				"key", key, "deadline", cfg.softDeadline)
		})
		defer timer.Stop()
	}

	out, err := fn(ctx)
	if err != nil {
		return result[T]{status: lifecycle.StatusComputeFailed, err: &ComputationError{Key: key, Err: err}}
	}
	if cfg.ttl != 0 {
		if err := e.client.Put(ctx, valueKey, out, cfg.ttl); err != nil {
			return result[T]{status: coordinator.StatusOf(err), err: err}
		}
		e.storeLocal(valueKey, out, cfg.ttl)
	}
	return result[T]{value: out, status: lifecycle.StatusValueComputed}
}

// Forget deletes the memoized value for key, forcing the next Do call to
// recompute without waiting for TTL expiry.
func (e *Engine[T]) Forget(ctx context.Context, key string) error {
	valueKey := key + "-value"
	if e.local != nil {
		e.local.del(valueKey)
	}
	return e.client.Delete(ctx, valueKey)
}

func (e *Engine[T]) storeLocal(valueKey string, v T, ttl time.Duration) {
	if e.local == nil {
		return
	}
	e.local.set(valueKey, v, ttl)
}
