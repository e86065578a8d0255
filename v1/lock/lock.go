package lock

import (
	"errors"
	"fmt"
	"time"
)

// State describes the position of a Handle in its lifecycle.
type State int

const (
	Unacquired State = iota
	Acquired
	Released
	TimedOut
)

func (s State) String() string {
	switch s {
	case Unacquired:
		return "unacquired"
	case Acquired:
		return "acquired"
	case Released:
		return "released"
	case TimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Handle represents an outstanding claim on a named mutual-exclusion
// resource. At most one handle per key is in state Acquired at any
// instant, as enforced by the coordinator's atomic primitive.
type Handle struct {
	Key        string
	TTL        time.Duration
	AcquiredAt time.Time
	Waited     time.Duration

	state State
	token string
}

// State returns the handle's current lifecycle state.
func (h *Handle) State() State {
	return h.state
}

// ErrWaitExceeded is the sentinel matched by errors.Is for wait-exceeded
// failures.
var ErrWaitExceeded = errors.New("lock: wait exceeded")

// WaitExceededError reports that the retry budget elapsed before the lock
// could be acquired. Waited is the actual time spent, which may overshoot
// the budget by up to one backoff interval.
type WaitExceededError struct {
	Key    string
	Waited time.Duration
}

func (e *WaitExceededError) Error() string {
	return fmt.Sprintf("lock: wait exceeded for %q after %s", e.Key, e.Waited)
}

func (e *WaitExceededError) Is(target error) bool {
	return target == ErrWaitExceeded
}
