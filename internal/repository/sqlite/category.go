package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/repository"
)

var _ repository.CategoryRepository = (*CategoryStore)(nil)

// CategoryStore persists the category forest.
type CategoryStore struct {
	db *DB
}

const categoryColumns = `id, name, slug, description, color, parent_id, sort_order, created_at, updated_at`

// Create inserts a new category. The caller has already resolved the
// slug; the UNIQUE index on slug is the backstop if a concurrent create
// resolved to the same value.
func (s *CategoryStore) Create(ctx context.Context, category *model.Category) error {
	now := time.Now()
	category.ID = xid.New().String()
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, description, color, parent_id, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.Color,
		category.ParentID,
		category.SortOrder,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("category", category.Slug)
		}
		return fmt.Errorf("sqlite: inserting category %q: %w", category.Name, err)
	}

	return nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id string) (*model.Category, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id,
	)
	category, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %s: %w", id, err)
	}
	return category, nil
}

func (s *CategoryStore) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug,
	)
	category, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", slug)
		}
		return nil, fmt.Errorf("sqlite: getting category by slug %q: %w", slug, err)
	}
	return category, nil
}

// List returns every category ordered by sort_order then name. The flat
// list is what tree assembly in the service consumes.
func (s *CategoryStore) List(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating category rows: %w", err)
	}

	return categories, nil
}

func (s *CategoryStore) Update(ctx context.Context, category *model.Category) error {
	category.UpdatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, color = ?, parent_id = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		category.Name,
		category.Slug,
		category.Description,
		category.Color,
		category.ParentID,
		category.SortOrder,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("category", category.Slug)
		}
		return fmt.Errorf("sqlite: updating category %s: %w", category.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of category %s: %w", category.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("category", category.ID)
	}
	return nil
}

// Delete removes a category. Its children are re-parented to the
// deleted node's own parent (the grandparent, or root when there is
// none) in the same transaction, so the forest never holds a dangling
// parent_id.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning category delete: %w", err)
	}
	defer tx.Rollback()

	var parentID sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT parent_id FROM categories WHERE id = ?`, id,
	).Scan(&parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("category", id)
		}
		return fmt.Errorf("sqlite: reading category %s before delete: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE categories SET parent_id = ? WHERE parent_id = ?`, parentID, id,
	); err != nil {
		return fmt.Errorf("sqlite: re-parenting children of %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting category %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing category delete: %w", err)
	}
	return nil
}

// SlugExists reports whether another category already holds this slug.
// excludeID keeps a row from colliding with itself on update.
func (s *CategoryStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?`, slug, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking category slug %q: %w", slug, err)
	}
	return n > 0, nil
}

func scanCategory(row scanner) (*model.Category, error) {
	var c model.Category
	var parentID sql.NullString

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.Color,
		&parentID,
		&c.SortOrder,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	return &c, nil
}
