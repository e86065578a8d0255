package memo

import "time"

type callConfig struct {
	ttl          time.Duration
	lockTTL      time.Duration
	lockMaxWait  time.Duration
	softDeadline time.Duration
}

// Option configures a single Do call.
type Option func(*callConfig)

// WithTTL sets how long a computed value stays cached. Zero disables
// persistence entirely: every future call recomputes, still serialized
// through the lock.
func WithTTL(d time.Duration) Option {
	return func(c *callConfig) {
		c.ttl = d
	}
}

// WithLockTTL sets the lease backing the computation lock, after which the
// coordinator auto-expires it if the holder crashes.
func WithLockTTL(d time.Duration) Option {
	return func(c *callConfig) {
		c.lockTTL = d
	}
}

// WithLockMaxWait bounds the total time spent retrying lock acquisition.
func WithLockMaxWait(d time.Duration) Option {
	return func(c *callConfig) {
		c.lockMaxWait = d
	}
}

// WithSoftDeadline sets an advisory deadline on the computation. It is
// purely observational: exceeding it is logged, the computation is neither
// cancelled nor re-invoked and its result is used as usual.
func WithSoftDeadline(d time.Duration) Option {
	return func(c *callConfig) {
		c.softDeadline = d
	}
}
