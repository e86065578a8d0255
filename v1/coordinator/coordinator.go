package coordinator

import (
	"context"
	"errors"
	"time"
)

// ErrContention is returned by AcquireLock when the lock is currently held
// by another party. It is the only retryable failure in the taxonomy.
var ErrContention = errors.New("coordinator: lock already held")

// ErrNoLease is returned when an operation references an unknown or
// expired lease.
var ErrNoLease = errors.New("coordinator: lease not found")

// ErrInvalidLeaseTTL is returned when a non-positive lease TTL is provided.
var ErrInvalidLeaseTTL = errors.New("coordinator: lease ttl must be positive")

// Coder is implemented by backend errors that carry a status code for
// lifecycle reporting.
type Coder interface {
	StatusCode() string
}

// Backend is the raw byte-level interface to the coordinator service.
//
// Put with a non-positive ttl stores the value without expiry. AcquireLock
// is atomic: it either installs a fencing token bound to a ttl lease and
// returns it, or fails with ErrContention while the key is held.
// ReleaseLock only removes the lock if the token still matches, so a lock
// that expired and was re-acquired elsewhere is never released by a stale
// holder.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	ReleaseLock(ctx context.Context, key, token string) error
}
