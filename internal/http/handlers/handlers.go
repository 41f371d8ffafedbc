// Package handlers exposes the shrine's HTTP API.
package handlers

import (
	"net/http"

	"github.com/street-spirit/shrine-backend/internal/auth"
	"github.com/street-spirit/shrine-backend/internal/http/respond"
	"github.com/street-spirit/shrine-backend/internal/middleware"
)

// requireUser resolves the acting principal or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
	}
	return claims, ok
}
