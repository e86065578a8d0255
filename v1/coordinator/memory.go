package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

type heldLock struct {
	token     string
	expiresAt time.Time
}

// InMemory implements Backend using local memory, mainly for tests and
// examples. Expiry is lazy: entries and locks are checked against the
// clock on access rather than swept in the background.
type InMemory struct {
	mu    sync.Mutex
	items map[string]entry
	locks map[string]heldLock
}

// NewInMemory returns a new in-memory backend.
func NewInMemory() *InMemory {
	return &InMemory{
		items: make(map[string]entry),
		locks: make(map[string]heldLock),
	}
}

// Get implements Backend.Get.
func (m *InMemory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(m.items, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Put implements Backend.Put.
func (m *InMemory) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = entry{data: value, expiresAt: exp}
	m.mu.Unlock()
	return nil
}

// Delete implements Backend.Delete.
func (m *InMemory) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// AcquireLock implements Backend.AcquireLock.
func (m *InMemory) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[key]; ok {
		if l.expiresAt.IsZero() || time.Now().Before(l.expiresAt) {
			return "", ErrContention
		}
		delete(m.locks, key)
	}
	token := uuid.NewString()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.locks[key] = heldLock{token: token, expiresAt: exp}
	return token, nil
}

// ReleaseLock implements Backend.ReleaseLock. Releasing with a stale or
// unknown token is a no-op.
func (m *InMemory) ReleaseLock(ctx context.Context, key, token string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[key]; ok && l.token == token {
		delete(m.locks, key)
	}
	return nil
}
