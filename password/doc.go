// Package password implements one-way password hashing and verification with bcrypt.
//
// # Work factor
//
// The bcrypt cost is fixed at [Rounds] and compiled into the binary. Raising it is a
// code change, not a configuration change, so every deployment hashes with the same
// work factor and stored hashes remain verifiable across releases.
//
// # What this package must NOT do
//
//   - Persist anything. Hash and Verify are a pure function pair.
//   - Return an error on a simple mismatch. Verify reports false; errors are
//     reserved for malformed hash input.
package password
