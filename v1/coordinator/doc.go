// Package coordinator adapts an external distributed key/value service to
// the rest of the library. It provides byte-level backends (Redis and an
// in-memory fake), a structured value codec, TTL-backed leases and a
// typed client that emits lifecycle notifications around every operation.
//
// The backend's lock primitive is atomic and contention is reported with
// ErrContention; everything above it (bounded retry, memoization) lives in
// the lock and memo packages.
package coordinator
