// Package lifecycle provides start/finish notification hooks around every
// coordination operation. Subscribers receive the method name, key and a
// status token; the hooks are a side channel for monitoring and never
// participate in control flow.
package lifecycle
