package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest extracts a bearer token from the Authorization header,
// falling back to the token query parameter used by WebSocket clients,
// which cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
