package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	accountant "github.com/theaccountant/accountant"
	"github.com/theaccountant/accountant/session"
)

// SessionValidator is the slice of the session service the gate needs.
// Satisfied by *accountant.Service.
type SessionValidator interface {
	IsValid(ctx context.Context, token, clientIP string) bool
	ExtractCredentials(header string) (session.Credentials, bool)
}

// DefaultAllowedPaths returns the public allow-list: paths that bypass
// session validation entirely. Matching is substring on the
// query-stripped URL (the root path is compared exactly), preserving the
// original filter's behavior — including its looseness: "/user/add"
// matches anywhere in the path, not only as a prefix.
func DefaultAllowedPaths() []string {
	return []string{
		"/user/login",
		"/user/logout",
		"/user/activation/",
		"/user/forgot_password",
		"/user/renew_forgot_password",
		"/user/add",
		"/user/description",
		"/.well-known/acme-challenge",
	}
}

// Gate returns the authentication middleware. Per request it:
//
//  1. forwards OPTIONS untouched (preflights carry no credentials),
//  2. attaches a [accountant.Principal] — claimed username decoded
//     best-effort from the Authorization header plus the observed client
//     IP — to the context unconditionally,
//  3. forwards allow-listed paths, then
//  4. forwards only when the raw header is an active session token bound
//     to this client IP; otherwise answers 401 with an empty body.
//
// The gate holds no mutable state; rejection is single-pass with no
// retry.
func Gate(validator SessionValidator, allowed []string, metrics *accountant.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authorization := r.Header.Get("Authorization")
			clientIP := ClientIP(r)

			var username string
			if creds, ok := validator.ExtractCredentials(authorization); ok {
				username = creds.Username
			}
			ctx := accountant.WithPrincipal(r.Context(), accountant.Principal{
				Username: username,
				ClientIP: clientIP,
			})
			r = r.WithContext(ctx)

			if isAllowedURL(r.URL.RequestURI(), allowed) {
				metrics.Inc(accountant.MetricGateForwarded)
				next.ServeHTTP(w, r)
				return
			}

			if authorization != "" && validator.IsValid(ctx, authorization, clientIP) {
				metrics.Inc(accountant.MetricGateForwarded)
				next.ServeHTTP(w, r)
				return
			}

			metrics.Inc(accountant.MetricGateRejected)
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
}

func isAllowedURL(url string, allowed []string) bool {
	if url == "" {
		return false
	}
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	if url == "/" {
		return true
	}
	for _, pattern := range allowed {
		if strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}

// ClientIP returns the observed client address: the X-Forwarded-For
// header when a proxy supplied one, otherwise the transport peer address
// with its port stripped.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
