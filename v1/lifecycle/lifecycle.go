package lifecycle

import (
	"sync"
	"time"
)

// Method tokens attached to every notification.
const (
	MethodGet         = "get"
	MethodPut         = "put"
	MethodDelete      = "del"
	MethodAcquireLock = "acquireLock"
	MethodMemoize     = "memoize"
)

// Status tokens attached to finish notifications. Backends may report
// additional free-form error codes in place of StatusError.
const (
	StatusOK            = "0"
	StatusAcquired      = "acq"
	StatusLockError     = "err"
	StatusTimeout       = "timeout"
	StatusValuePreLock  = "val-prelock"
	StatusValuePostLock = "val-postlock"
	StatusValueComputed = "val-eval"
	StatusComputeFailed = "fn-error"
	StatusError         = "error"
)

// Info describes one coordination operation. It is created per call and
// consumed only by lifecycle handlers; it is never persisted.
type Info struct {
	Method  string
	Key     string
	Status  string
	Value   any
	TTL     time.Duration
	Elapsed time.Duration
}

// Handler receives lifecycle notifications. Handlers run inline on the
// calling goroutine and must not block.
type Handler func(Info)

// Hub dispatches start and finish notifications to registered handlers.
// Dispatch is synchronous and unordered across subscribers. A nil Hub is
// valid and drops all notifications.
type Hub struct {
	mu     sync.RWMutex
	start  []Handler
	finish []Handler
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// OnStart registers a handler for start notifications.
func (h *Hub) OnStart(fn Handler) {
	h.mu.Lock()
	h.start = append(h.start, fn)
	h.mu.Unlock()
}

// OnFinish registers a handler for finish notifications.
func (h *Hub) OnFinish(fn Handler) {
	h.mu.Lock()
	h.finish = append(h.finish, fn)
	h.mu.Unlock()
}

// EmitStart delivers a start notification to all start handlers.
func (h *Hub) EmitStart(info Info) {
	if h == nil {
		return
	}
	h.mu.RLock()
	handlers := h.start
	h.mu.RUnlock()
	for _, fn := range handlers {
		fn(info)
	}
}

// EmitFinish delivers a finish notification to all finish handlers.
func (h *Hub) EmitFinish(info Info) {
	if h == nil {
		return
	}
	h.mu.RLock()
	handlers := h.finish
	h.mu.RUnlock()
	for _, fn := range handlers {
		fn(info)
	}
}
