package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/model"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "inkwell_session"

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write
// the principal in a request context — no string-key collisions.
type contextKey string

const principalKey contextKey = "principal"

// UserResolver turns a verified claim's user ID back into a live user
// record. Implemented by service.AuthService; an inactive or deleted
// account resolves to an error, which the guard treats as a dead session.
type UserResolver interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth guards a route with the four-gate pipeline, with no role
// requirement (gate 4 is skipped). See RequireRole.
func RequireAuth(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return RequireRole(tokens, users, "")
}

// RequireRole returns a middleware enforcing the guard pipeline:
//
//	1. Extract: session cookie, falling back to "Authorization: Bearer".
//	   Neither present → 401 "authentication required".
//	2. Verify:  signature + TTL check. Failure → 401 "invalid or expired token".
//	3. Resolve: claim's user ID → live user row. The account may have been
//	   deactivated or deleted since the token was issued → 401 "user not found".
//	4. Authorize: only when required != "". Role below required →
//	   403 "insufficient permissions".
//
// Every request runs all gates from scratch — no caching between
// requests. On success the resolved principal lands in the context for
// PrincipalFromContext.
func RequireRole(tokens *TokenService, users UserResolver, required model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				writeDenial(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				writeDenial(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if err != nil || user == nil {
				writeDenial(w, http.StatusUnauthorized, "user not found")
				return
			}

			if required != "" && !HasRole(user, required) {
				writeDenial(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext retrieves the authenticated user attached by the
// guard. Returns (nil, false) on routes that did not pass through it.
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(principalKey).(*model.User)
	return user, ok && user != nil
}

// extractToken reads the session token from the named cookie, falling
// back to a bearer-style Authorization header. Returns "" when neither
// is present.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// writeDenial emits the guard's structured denial. The shape matches
// handler.ErrorResponse so clients parse all errors the same way.
func writeDenial(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errType := "unauthorized"
	if status == http.StatusForbidden {
		errType = "forbidden"
	}
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errType,
		"message": message,
	})
}
