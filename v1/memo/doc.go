// Package memo turns the coordinator into a cross-process single-flight
// compute cache. Each key maps to a "<key>-value" entry and a "<key>-lock"
// lock; callers read the value before and after acquiring the lock, so an
// expensive computation runs at most once per cache generation no matter
// how many processes request it concurrently.
package memo
