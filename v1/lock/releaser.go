package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/latchkit/go-latch/v1/coordinator"
	"github.com/latchkit/go-latch/v1/lifecycle"
)

// Releaser performs best-effort release of held locks.
type Releaser struct {
	backend coordinator.Backend
	hub     *lifecycle.Hub
}

// NewReleaser returns a Releaser over the given backend. hub may be nil.
func NewReleaser(b coordinator.Backend, hub *lifecycle.Hub) *Releaser {
	return &Releaser{backend: b, hub: hub}
}

// Release frees the lock behind h. It is fire-and-forget: any backend
// error is logged and discarded, since the lock's lease expires it anyway.
// Handles that are nil or not in state Acquired are ignored.
func (r *Releaser) Release(ctx context.Context, h *Handle) {
	if h == nil || h.state != Acquired {
		return
	}
	if err := r.backend.ReleaseLock(ctx, h.Key, h.token); err != nil {
		slog.Warn("latch: lock release failed", "key", h.Key, "error", err)
	}
	h.token = ""
	h.state = Released
	r.hub.EmitFinish(lifecycle.Info{
		Method:  lifecycle.MethodAcquireLock,
		Key:     h.Key,
		Status:  lifecycle.StatusOK,
		Elapsed: time.Since(h.AcquiredAt),
	})
}
