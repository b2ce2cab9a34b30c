package middleware

import (
	"net/http"
	"strings"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
)

// RequireAuthMiddleware returns a mux-compatible middleware (func(http.Handler) http.Handler).
func RequireAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(secret, next)
	}
}

// RequireAuth aceita o JWT no cookie de sessão ou no header Authorization (Bearer).
func RequireAuth(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			http.Error(w, `{"success":false,"message":"não autenticado"}`, http.StatusUnauthorized)
			return
		}
		claims, err := auth.ParseJWT(secret, raw)
		if err != nil {
			http.Error(w, `{"success":false,"message":"sessão inválida ou expirada"}`, http.StatusUnauthorized)
			return
		}
		r = r.WithContext(auth.WithClaims(r.Context(), claims))
		next.ServeHTTP(w, r)
	})
}

func RequireTipo(tipos ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := auth.ClaimsFrom(r.Context())
			if c == nil {
				http.Error(w, `{"success":false,"message":"não autenticado"}`, http.StatusUnauthorized)
				return
			}
			for _, tipo := range tipos {
				if c.Tipo == tipo {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, `{"success":false,"message":"acesso negado"}`, http.StatusForbidden)
		})
	}
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
