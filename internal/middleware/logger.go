package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// WithLogger adds a request scoped logger to the context. It records where
// the request went, never who made it: no remote address, no user id.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
