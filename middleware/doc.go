// Package middleware exposes the HTTP request gate plus the CORS and
// request-ID middleware composed around it.
//
// Ordering matters and is explicit: request-ID → CORS → [Gate] → routes.
// The CORS handler runs first so every response (including 401s from the
// gate) carries the permissive cross-origin headers, and OPTIONS
// preflights terminate before any auth check.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into session-service calls. It
// makes no authentication decisions itself — pass/reject is delegated to
// [SessionValidator.IsValid] — and it never touches Redis or the user
// store.
package middleware
