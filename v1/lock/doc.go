// Package lock implements bounded-retry acquisition and best-effort
// release of distributed locks backed by the coordinator's atomic
// primitive. Contention is retried with linear backoff until a wait budget
// elapses; every other failure aborts immediately. The coordinator is the
// single source of truth for who holds a lock — no local exclusion is
// taken.
package lock
