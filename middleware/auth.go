package middleware

import (
	"context"
	"net/http"
	"strings"

	"widget-canvas/handlers/auth"

	"github.com/go-chi/render"
)

type contextKey string

const ClaimsContextKey = contextKey("claims")

// TokenQueryParam carries the token on socket.io handshakes, which cannot set headers from a browser.
const TokenQueryParam = "token"

// AuthJWT requires a bearer token when auth is enabled and passes requests through otherwise.
func AuthJWT(next http.Handler) http.Handler {
	return authenticate(next, false)
}

// AuthJWTQuery is AuthJWT that also accepts the token in the TokenQueryParam query parameter.
func AuthJWTQuery(next http.Handler) http.Handler {
	return authenticate(next, true)
}

func authenticate(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, msg := bearerToken(r)
		if token == "" && allowQuery && r.Header.Get("Authorization") == "" {
			token = r.URL.Query().Get(TokenQueryParam)
		}
		if token == "" {
			unauthorized(w, r, msg)
			return
		}

		claims, err := auth.ParseJWT(token)
		if err != nil {
			unauthorized(w, r, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken returns the header token, or the message explaining why there is none.
func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header is required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", "Authorization header format must be Bearer {token}"
	}
	return parts[1], ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"error": msg})
}

func ClaimsFromRequest(r *http.Request) (*auth.AppClaims, bool) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*auth.AppClaims)
	return claims, ok
}
