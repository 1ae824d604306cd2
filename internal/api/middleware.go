package api

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/erazemk/kitreq/internal/auth"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/settings"
	"github.com/erazemk/kitreq/internal/store"
)

type contextKey string

const claimsKey contextKey = "claims"

// authenticate validates the request token and checks it has not been
// revoked. It returns nil claims and a nil error when no token was sent.
func authenticate(r *http.Request, secret string, db *sql.DB) (*auth.Claims, error) {
	tokenStr := auth.TokenFromRequest(r)
	if tokenStr == "" {
		return nil, nil
	}

	claims, err := auth.ValidateToken(secret, tokenStr)
	if err != nil {
		return nil, err
	}

	revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking token revocation: %w", err)
	}
	if revoked {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// AuthMiddleware validates the bearer token, checks it has not been
// revoked, and adds the claims to the context.
func AuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, secret, db)
			if err != nil {
				slog.Warn("rejected token", "path", r.URL.Path, "error", err)
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth adds claims to the context when a valid token is present
// and otherwise lets the request through anonymously.
func OptionalAuth(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, secret, db)
			if err == nil && claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireViewer admits anyone while login is not required, and otherwise
// at least a viewer. It expects OptionalAuth to have run.
func RequireViewer(cache *settings.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cache.Get().RequireLogin {
				claims := GetClaims(r.Context())
				if claims == nil {
					jsonError(w, http.StatusUnauthorized, "not authenticated")
					return
				}
				if !model.RoleAtLeast(claims.Role, model.RoleViewer) {
					jsonError(w, http.StatusForbidden, "insufficient permissions")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that checks if the user has at least the given role.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !model.RoleAtLeast(claims.Role, minimum) {
				jsonError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// actor names the caller for log lines.
func actor(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Username
	}
	return "anonymous"
}

// roleOf returns the caller's role, or "" for anonymous callers.
func roleOf(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Role
	}
	return ""
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the live feed take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// RecoveryMiddleware turns a panicking handler into a 500.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				slog.Error("panic recovered", "error", err, "path", r.URL.Path, "stack", string(debug.Stack()))
				jsonError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
