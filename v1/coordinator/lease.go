package coordinator

import (
	"context"
	"time"

	uuid "github.com/hashicorp/go-uuid"
)

type lease struct {
	keys      map[string]struct{}
	expiresAt time.Time
	timer     *time.Timer
}

// GrantLease creates a lease that expires after ttl. Writes bound to the
// lease via BindPut share its remaining lifetime, and RevokeLease deletes
// them eagerly.
func (c *Client) GrantLease(ctx context.Context, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidLeaseTTL
	}
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", err
	}
	l := &lease{keys: make(map[string]struct{}), expiresAt: time.Now().Add(ttl)}
	l.timer = time.AfterFunc(ttl, func() {
		c.mu.Lock()
		delete(c.leases, id)
		c.mu.Unlock()
	})
	c.mu.Lock()
	c.leases[id] = l
	c.mu.Unlock()
	return id, nil
}

// BindPut stores value under key with a TTL equal to the lease's remaining
// lifetime, so the write expires together with the lease.
func (c *Client) BindPut(ctx context.Context, leaseID, key string, value any) error {
	c.mu.Lock()
	l, ok := c.leases[leaseID]
	if !ok {
		c.mu.Unlock()
		return ErrNoLease
	}
	remaining := time.Until(l.expiresAt)
	l.keys[key] = struct{}{}
	c.mu.Unlock()
	if remaining <= 0 {
		return ErrNoLease
	}
	return c.Put(ctx, key, value, remaining)
}

// RevokeLease stops the lease and deletes every key bound to it. Revoking
// an unknown or already expired lease is a no-op.
func (c *Client) RevokeLease(ctx context.Context, id string) {
	c.mu.Lock()
	l, ok := c.leases[id]
	if ok {
		delete(c.leases, id)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	l.timer.Stop()
	for key := range l.keys {
		_ = c.Delete(ctx, key)
	}
}
