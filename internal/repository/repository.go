// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the concrete
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/inkwell-cms/inkwell/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail matches case-insensitively and includes the password
	// digest — it exists for the login path only.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, user *model.User) error
	// UpdateLastLogin stamps last_login_at; callers treat failure as
	// non-fatal.
	UpdateLastLogin(ctx context.Context, id string) error
	// Deactivate flips is_active to false, preserving the row.
	Deactivate(ctx context.Context, id string) error
	// Delete removes the row permanently.
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	// List returns all categories ordered by sort_order then name;
	// tree assembly happens in the service.
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	// Delete removes the category and re-parents its children to the
	// deleted node's own parent, so no child is left dangling.
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, id string) (*model.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tag, error)
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	// List includes each tag's post association count.
	List(ctx context.Context) ([]model.Tag, error)
	Delete(ctx context.Context, id string) error
	// DeleteUnused removes every tag with zero post associations and
	// returns how many rows went away.
	DeleteUnused(ctx context.Context) (int, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	List(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, setting *model.Setting) error
}
