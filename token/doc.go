// Package token signs and verifies the three token classes used by the
// authentication engine (activation, access, refresh) with per-class HMAC
// secrets and strict validation semantics suitable for low-latency paths.
package token
