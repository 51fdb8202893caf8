package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Vasu1712/hushgroup-backend/internal/api"
	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	"github.com/Vasu1712/hushgroup-backend/internal/identity"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type contextKey string

const userIDKey contextKey = "userID"

// Authenticate resolves the caller once per request and stores the user id in
// the context. The bearer token comes from the Authorization header, or from
// the "token" query parameter on websocket upgrades, which browsers cannot
// send headers with. Ordinary requests must use the header.
func Authenticate(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().
				Str("handler", "Authenticate").Logger()

			token := bearerToken(r)
			if token == "" {
				logger.Debug().Msg("credential missing")
				api.WriteError(w, r, apperr.ErrUnauthorized)
				return
			}

			userID, err := resolver.ResolveIdentity(r.Context(), token)
			if err != nil {
				logger.Debug().Err(err).Msg("credential rejected")
				api.WriteError(w, r, apperr.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

// UserID returns the caller resolved by Authenticate.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a copy of ctx carrying userID, as Authenticate would.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
