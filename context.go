package accountant

import "context"

// Principal is the identity attached to an in-flight request: the username
// the caller claims (decoded best-effort from the Authorization header) and
// the observed client IP. It is constructed fresh per request and never
// persisted. Presence of a Principal is not proof of authorization — the
// gate attaches one even to requests it ends up rejecting.
type Principal struct {
	Username string
	ClientIP string
}

// Anonymous reports whether the principal carries no claimed username.
func (p Principal) Anonymous() bool {
	return p.Username == ""
}

type principalContextKey struct{}

// WithPrincipal attaches a [Principal] to ctx. The request gate calls this
// unconditionally before making its forward/reject decision.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the [Principal] attached by the gate, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}

	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
