package middleware

import "github.com/go-chi/cors"

// CORSOptions is the permissive cross-origin policy every response
// carries: any origin, the fixed method and header sets, one-hour
// preflight cache. Install with cors.Handler before [Gate] so preflights
// terminate without an auth check and rejections still carry the headers.
func CORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "PUT", "GET", "OPTIONS", "DELETE"},
		AllowedHeaders: []string{
			"x-requested-with",
			"Content-Type",
			"XSFR-TOKEN",
			"X-CSRF-TOKEN",
			"X-XSRF-TOKEN",
			"Authorization",
			"Access-Control-Allow-Origin",
		},
		MaxAge: 3600,
	}
}
