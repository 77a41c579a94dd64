// Package session provides Redis-backed session persistence and the
// serialized principal snapshot used by authentication hot paths.
//
// # Encoding
//
// One entry per user: the key is the prefixed user ID, the value is the
// JSON-encoded [Principal], the TTL is the session lifetime. Refreshing or
// updating the account rewrites value and TTL together; logout deletes the
// entry. Entry presence is the single authority for session validity.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Principal] model.
// It does NOT interpret tokens or enforce authentication policy — those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import authcore or token (no upward imports).
//   - Perform application-level authorization decisions.
//   - Store password hashes in [Principal] fields.
package session
