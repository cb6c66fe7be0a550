// Package accountant implements the session-based authentication core of
// the personal-finance backend: credential verification, server-tracked
// sessions bound to the originating client IP, and per-request validation.
//
// [Service] is the public surface. It orchestrates login (verify
// credentials, mint a session), logout (invalidate a session), and the
// per-request validity check consumed by the request gate in the
// middleware package. All Service methods are safe to call from multiple
// goroutines after construction through [New].
//
// # Token contract
//
// The session token is the exact Authorization header value the client
// presented at login (the base64 credential encoding). Clients resend the
// identical value on every request and the store recognizes it as the
// session key. This deliberately conflates credential encoding with the
// session token — credentials are effectively resent per request — and is
// kept for wire compatibility with existing clients. The store never keys
// on the raw value; see [session.Store].
//
// # Architecture boundaries
//
// User persistence and password hashing are collaborators consumed
// through [UserProvider] and [PasswordVerifier]. The package performs no
// I/O besides the session store's own persistence calls and never touches
// HTTP types; translating requests into Service calls is the middleware
// package's job.
package accountant
