package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/repository"
)

const (
	MinPasswordLength = 8
	MaxNameLength     = 100
)

// UserService handles account administration: create, edit, deactivate
// and hard-delete. Authorization (admin-only) happens in the request
// guard before these methods run.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Create registers a new account. The plaintext password is digested
// here, once, and never stored or logged. The email must be unused by
// any account, active or deactivated.
func (s *UserService) Create(ctx context.Context, email, name, password string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "email is not a valid address")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", "role must be admin, editor or author")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password could not be processed")
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// GetByID returns any account, active or deactivated — admins need to
// see both. (Contrast AuthService.GetUser, which hides inactive rows.)
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Update edits profile fields. Empty inputs mean "leave unchanged";
// the active flag is always applied. A non-empty password is re-hashed.
func (s *UserService) Update(ctx context.Context, id, email, name, password string, role model.Role, active bool) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperror.ValidationFailed("email", "email is not a valid address")
		}
		user.Email = email
	}
	if name = strings.TrimSpace(name); name != "" {
		if len(name) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("name must be %d characters or less", MaxNameLength))
		}
		user.Name = name
	}
	if password != "" {
		if len(password) < MinPasswordLength {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
		}
		hash, err := s.passwords.Hash(password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", "password could not be processed")
		}
		user.PasswordHash = hash
	}
	if role != "" {
		if !role.Valid() {
			return nil, apperror.ValidationFailed("role", "role must be admin, editor or author")
		}
		user.Role = role
	}
	user.IsActive = active

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user %s: %w", id, err)
	}

	s.logger.Info("user updated", slog.String("userID", user.ID))
	return user, nil
}

// Deactivate soft-deletes an account: the row and its email stay, the
// active flag flips off, and any outstanding session dies on next use.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}

	if err := s.users.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deactivated", slog.String("userID", id))
	return nil
}

// Delete permanently removes an account row. This is the explicit
// hard-delete path; Deactivate is the normal one.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user hard-deleted", slog.String("userID", id))
	return nil
}

// Bootstrap seeds the first admin account when the users table is
// empty. Without it a fresh install has no account able to reach the
// admin-gated user endpoints. No-op when any user exists or the seed
// credentials are unset.
func (s *UserService) Bootstrap(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users for bootstrap: %w", err)
	}
	if n > 0 {
		return nil
	}

	user, err := s.Create(ctx, email, "Administrator", password, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	s.logger.Info("seeded initial admin account", slog.String("userID", user.ID))
	return nil
}
