package middleware

import (
	"net/http"
	"strings"

	internaljwt "creator-chat-backend/internal/jwt"
)

// RequireAuthToken rejects requests whose bearer token does not verify.
// Endpoints behind it still resolve the full user record themselves; this
// only keeps unauthenticated traffic out of the handler queue.
func RequireAuthToken() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if internaljwt.VerifyAuthToken(token) == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next(w, r)
		}
	}
}

func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
