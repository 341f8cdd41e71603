// Package session provides Redis-backed persistence for active login sessions and a
// compact binary encoding for session records.
//
// # Single active session
//
// Records are keyed by username, one key per user. Save is a plain replace, so a new
// login atomically supersedes any previous session for the same user; there is no
// append path that could accumulate stale records.
//
// # Binary encoding
//
// Records serialize as: version byte, username (1-byte length + bytes), access token
// (2-byte big-endian length + bytes), created-at and expires-at as big-endian int64
// Unix seconds. The version byte guards decoding of records written by older builds.
//
// # Sweep on read
//
// Get deletes records it observes to be expired or undecodable and reports them
// absent. Redis key TTLs are set as a backstop, but expiry semantics never depend
// on them.
package session
