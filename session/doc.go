// Package session provides the credential codec, the session record with
// its binary wire encoding, and the Redis-backed session store.
//
// # Token contract
//
// A session token is the literal Authorization header value produced by
// [EncodeCredentials]: base64 of "username:password". The store maps that
// exact string to its owning user, bound client IP, and expiry — no
// separate opaque token is issued. This is a deliberate simplification
// carried over from the original wire protocol, not a recommended design;
// it means the credential encoding is resent on every request. The store
// keys Redis entries on the SHA-256 of the token so raw credentials never
// appear in key space.
//
// # Expiry
//
// Expiry is evaluated lazily at read time. Redis TTLs keep the keyspace
// tidy, and [Store.FindActive] additionally checks the ExpiresAt stamped
// in the blob, reaping expired rows opportunistically. No background
// sweeper exists or is needed for correctness.
package session
