package service

import (
	"context"
	"errors"
	"testing"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/model"
)

func newTestUserService(t *testing.T, repo *fakeUserRepo) *UserService {
	t.Helper()
	return NewUserService(repo, auth.NewPasswordServiceForTest(4), testLogger(t))
}

func TestUserCreate_Valid(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	user, err := svc.Create(context.Background(), "  Alice@Example.COM ", "Alice", "long-enough-pw", model.RoleEditor)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "long-enough-pw" || user.PasswordHash == "" {
		t.Error("password was not digested")
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
}

func TestUserCreate_Validation(t *testing.T) {
	svc := newTestUserService(t, newFakeUserRepo())
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     model.Role
		field    string
	}{
		{"missing email", "", "long-enough-pw", model.RoleEditor, "email"},
		{"malformed email", "not-an-address", "long-enough-pw", model.RoleEditor, "email"},
		{"short password", "a@example.com", "short", model.RoleEditor, "password"},
		{"unknown role", "a@example.com", "long-enough-pw", "wizard", "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.email, "Name", tt.password, tt.role)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.field {
				t.Errorf("validation field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice@example.com", "Alice", "long-enough-pw", model.RoleEditor); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	_, err := svc.Create(ctx, "alice@example.com", "Alice Two", "long-enough-pw", model.RoleAuthor)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Create() error = %v, want ErrConflict", err)
	}
}

func TestUserUpdate_PartialEdits(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, "alice@example.com", "Alice", "long-enough-pw", model.RoleAuthor)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	originalHash := user.PasswordHash

	// Empty email/name/password mean "leave unchanged"; role and the
	// active flag are applied.
	updated, err := svc.Update(ctx, user.ID, "", "", "", model.RoleEditor, true)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Email != "alice@example.com" {
		t.Errorf("email changed unexpectedly: %q", updated.Email)
	}
	if updated.PasswordHash != originalHash {
		t.Error("password hash changed without a new password")
	}
	if updated.Role != model.RoleEditor {
		t.Errorf("role = %q, want editor", updated.Role)
	}
}

func TestUserUpdate_NewPasswordIsRehashed(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, "alice@example.com", "Alice", "long-enough-pw", model.RoleAuthor)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, "", "", "another-long-pw", "", true)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.PasswordHash == user.PasswordHash {
		t.Error("password hash should change with a new password")
	}
	if err := auth.NewPasswordServiceForTest(4).Verify(updated.PasswordHash, "another-long-pw"); err != nil {
		t.Errorf("new hash does not verify: %v", err)
	}
}

func TestUserBootstrap_SeedsOnlyEmptyTable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "root@example.com", "bootstrap-pw"); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	seeded, err := repo.GetByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("seeded admin not found: %v", err)
	}
	if seeded.Role != model.RoleAdmin {
		t.Errorf("seeded role = %q, want admin", seeded.Role)
	}

	// Second run is a no-op: users exist now.
	if err := svc.Bootstrap(ctx, "other@example.com", "bootstrap-pw"); err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "other@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("Bootstrap() seeded a second account into a non-empty table")
	}
}

func TestUserBootstrap_NoCredentialsNoSeed(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(t, repo)

	if err := svc.Bootstrap(context.Background(), "", ""); err != nil {
		t.Fatalf("Bootstrap() without credentials error = %v", err)
	}
	if n, _ := repo.Count(context.Background()); n != 0 {
		t.Errorf("Bootstrap() without credentials created %d users", n)
	}
}
