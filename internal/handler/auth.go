package handler

import (
	"log/slog"
	"net/http"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/service"
)

// AuthHandler serves login, logout, and the current-user endpoint.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates credentials and sets the session cookie.
//
// HTTP: POST /auth/login
//
// On success the token rides in an HttpOnly SameSite=Lax cookie with
// max-age equal to the token TTL; the body carries the password-free
// user view. Every failure is the same generic 401 — the service layer
// guarantees no enumeration leak, and this handler adds nothing to it.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable behind HTTPS in production
	})

	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the session cookie unconditionally.
//
// HTTP: POST /auth/logout
//
// Logout is the one place availability beats error propagation: the
// cookie is cleared no matter what, and the endpoint cannot fail from
// the client's point of view. The token itself stays valid until its
// TTL; without the cookie the browser simply stops sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /auth/me (guarded, no role requirement)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// Unreachable behind the guard, but don't panic if miswired.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	writeJSON(w, http.StatusOK, principal)
}
