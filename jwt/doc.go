// Package jwt encodes and decodes the service's signed access tokens using HS256
// compact serialization and a shared secret.
//
// # Expiry is a claim, not a parse failure
//
// Decoding a structurally valid token with a lapsed exp claim succeeds. Signature
// validity and temporal validity are distinct checks with distinct failure handling:
// the engine reads ExpiresAt from the returned claims and decides, so that an
// expired token can still be attributed to its subject for session sweeping.
package jwt
