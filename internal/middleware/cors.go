package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"

	// preflight results are cached for five minutes
	corsMaxAge = 300
)

// CORSMiddleware lets the PDV front end call the API from its own origin.
// Every origin is allowed in development or when none are configured. The
// backup download name and the rate limit counters are readable by scripts.
func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	origins := allowedOrigins
	if isDevelopment || len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{
			"Content-Disposition",
			HeaderRateLimitLimit,
			HeaderRateLimitRemaining,
			HeaderRateLimitReset,
		},
		MaxAge: corsMaxAge,
	})
}
