// Package middleware exposes HTTP middleware adapters for session-backed
// authentication and role-based authorization built on top of authcore.Engine.
//
// # Guards
//
//   - [Guard] — resolves the access token cookie to a principal.
//   - [RequireRoles] — role allowlist check on an already guarded route.
//
// [Guard] reads the access token (cookie first, Authorization header as a
// fallback), calls Engine.Authenticate, and injects the principal into the
// request context where [PrincipalFromContext] retrieves it.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authenticate and Engine.Authorize.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
