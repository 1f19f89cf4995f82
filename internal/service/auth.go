// Package service contains the business logic layer: validation, rules
// and orchestration, independent of HTTP. Handlers translate requests
// into service calls; repositories do the storage.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/repository"
)

// AuthService orchestrates login and session resolution.
//
// FAILURE POLICY:
// Every login failure — unknown email, wrong password, deactivated
// account, even a storage error — is normalized to the same generic
// apperror.Unauthorized before it leaves this layer. Distinguishing
// "no such user" from "wrong password" would let an attacker enumerate
// accounts; the real cause is logged, never returned.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the authenticated user with the issued token so
// the handler can set the cookie and respond in one step.
type LoginResult struct {
	User  *model.User
	Token string
}

const genericLoginFailure = "invalid email or password"

// Login verifies credentials and issues a session token.
//
// The email is normalized (trimmed, lowercased) before lookup. On
// success the user's last-login timestamp is recorded best-effort: a
// failure there is logged and swallowed, never failing the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Unauthorized(genericLoginFailure)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Unknown email and infrastructure failure get the same shape.
		s.logger.Info("login failed: lookup", slog.String("email", email))
		return nil, apperror.Unauthorized(genericLoginFailure)
	}

	if !user.IsActive {
		s.logger.Info("login failed: account deactivated", slog.String("userID", user.ID))
		return nil, apperror.Unauthorized(genericLoginFailure)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: password mismatch", slog.String("userID", user.ID))
		return nil, apperror.Unauthorized(genericLoginFailure)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Best-effort only.
		s.logger.Warn("failed to record last login",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("token issuance failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unauthorized(genericLoginFailure)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// GetUser resolves a user ID from a verified session claim to a live
// account. A deactivated account resolves to not-found — tokens issued
// before deactivation die on their next use.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.NotFound("user", id)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.NotFound("user", id)
	}

	return user, nil
}
