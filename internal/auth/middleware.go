package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Authenticate resolves the Bearer token into an Identity and stores it in
// the request context. Handlers behind it can assume the identity is present.
func (tm *TokenManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			denied(w, http.StatusUnauthorized, "You are not logged in. Please log in.")
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == "" {
			denied(w, http.StatusUnauthorized, "No token provided")
			return
		}

		identity, err := tm.Verify(tokenStr)
		if err != nil {
			log.Warn().Err(err).Msg("auth: token verification failed")
			denied(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireRole gates a route on the role carried by the resolved Identity.
// It must run after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				denied(w, http.StatusUnauthorized, "You are not logged in. Please log in.")
				return
			}
			if identity.Role != role {
				denied(w, http.StatusForbidden, "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denied(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
