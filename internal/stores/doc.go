// Package stores contains Redis-backed persistence helpers that the engine owns
// but does not export: the credential collection mapping usernames to password
// hashes.
package stores
