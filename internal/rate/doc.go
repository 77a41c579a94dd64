// Package rate provides internal primitives used to build Redis-backed rate limit keys,
// errors, and limiter behavior for security-sensitive authentication workflows.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - al:  — login per-email
//   - ali: — login per-IP
//   - ar:  — refresh per-user
//
// # What this package must NOT do
//
//   - Decide which operations are throttled (the engine does).
//   - Be imported outside the authcore module.
package rate
