// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts the bearer token from the Authorization header and adds identity to context

package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Only the portion after the first space is treated as the token.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "invalid authorization header format"
	}
	return parts[1], ""
}

// Middleware creates an HTTP middleware that extracts and validates JWT
// tokens, attaching the decoded Identity to the request context. The token
// payload is trusted for id and role; the middleware never consults the
// store, so a role change or account deletion is not reflected until the
// token expires.
func Middleware(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				if logger != nil {
					logger.Warn("auth failed", "reason", errMsg, "path", r.URL.Path)
				}
				http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if logger != nil {
					logger.Warn("auth failed", "reason", "invalid token", "error", err, "path", r.URL.Path)
				}
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ident := &Identity{UserID: claims.UserID, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// RequireAdmin creates an HTTP middleware that requires the admin role.
// Must be used after Middleware.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := FromContext(r.Context())
			if ident == nil {
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			if !ident.IsAdmin() {
				if logger != nil {
					logger.Warn("admin gate denied", "user_id", ident.UserID, "path", r.URL.Path)
				}
				http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
