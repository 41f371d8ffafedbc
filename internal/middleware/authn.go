package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/street-spirit/shrine-backend/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authn resolves a Bearer token to the acting principal and stores it in the
// request context. Requests without a token pass through unauthenticated;
// handlers that need a user check ClaimsFrom.
func Authn(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if claims, err := tokens.Verify(strings.TrimSpace(token)); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFrom returns the principal resolved by Authn, if any.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}
