// Package authcore provides the authentication and session lifecycle engine for
// an LMS backend: signed activation/access/refresh tokens, a 4-digit emailed
// activation flow, Redis-backed session authority, rotation on refresh, and
// role-based authorization.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (TokenPair, MetricsSnapshot, etc.). Token encoding, session
// persistence, password hashing, mail transport, and rate limiting live in
// sub-packages and are orchestrated only here.
//
// # What this package must NOT do
//
//   - Expose Redis clients or store encoding details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports authcore (no import cycles).
//
// # Performance contract
//
// Authenticate is the hot path: one token parse plus one Redis GET. Login,
// Refresh, and account operations are allowed a handful of Redis round-trips
// per call.
package authcore
