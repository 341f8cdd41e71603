// Package authgate provides a user-authentication engine with JWT access tokens and
// Redis-backed session tracking: registration, credential verification, token
// issuance, and server-side session validity with a single active session per user.
//
// The package is designed for concurrent server workloads: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config], the error
// taxonomy, and the audit/metrics value types. Store implementations live under
// internal/ and session/; HTTP integration lives in httpapi/ and middleware/.
//
// # Session model
//
// A login mints a signed, self-contained access token and records it as the one live
// session for that username, replacing any prior session. Authentication is a gate:
// signature validity, temporal validity, and session liveness are checked in that
// order, each with its own failure signal. Expired sessions are swept lazily on read;
// there is no background reaper.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Retry store failures internally; they surface to the caller wrapped in
//     [ErrStoreUnavailable].
package authgate
