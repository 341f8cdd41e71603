// Package middleware exposes an HTTP guard built on top of
// authgate.Engine token verification.
//
// [Guard] reads the bearer token from the Authorization header, verifies it
// through Engine.Authenticate, and injects the authenticated username into
// the request context for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from
//     Engine.Authenticate.
package middleware
