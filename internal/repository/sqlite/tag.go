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

var _ repository.TagRepository = (*TagStore)(nil)

// TagStore persists tags and their post associations.
type TagStore struct {
	db *DB
}

// Create inserts a new tag. Slug collisions under a race surface as
// apperror.Conflict via the UNIQUE index.
func (s *TagStore) Create(ctx context.Context, tag *model.Tag) error {
	tag.ID = xid.New().String()
	tag.CreatedAt = time.Now()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
		tag.ID,
		tag.Name,
		tag.Slug,
		tag.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("tag", tag.Slug)
		}
		return fmt.Errorf("sqlite: inserting tag %q: %w", tag.Name, err)
	}

	return nil
}

func (s *TagStore) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	return s.getWhere(ctx, `id = ?`, id)
}

func (s *TagStore) GetBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	return s.getWhere(ctx, `slug = ?`, slug)
}

// GetByName matches case-insensitively; the bulk find-or-create path
// uses it to avoid near-duplicate tags like "Go" and "go".
func (s *TagStore) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	return s.getWhere(ctx, `name = ? COLLATE NOCASE`, name)
}

func (s *TagStore) getWhere(ctx context.Context, where string, arg any) (*model.Tag, error) {
	var t model.Tag
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM tags WHERE `+where, arg,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting tag (%s): %w", where, err)
	}
	return &t, nil
}

// List returns all tags alphabetically, each with its post association
// count so callers can spot unused tags.
func (s *TagStore) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(pt.post_id)
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name COLLATE NOCASE`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tag rows: %w", err)
	}

	return tags, nil
}

func (s *TagStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting tag %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking deletion of tag %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("tag", id)
	}
	return nil
}

// DeleteUnused sweeps every tag with zero post associations and reports
// how many rows were removed.
func (s *TagStore) DeleteUnused(ctx context.Context) (int, error) {
	res, err := s.db.conn.ExecContext(ctx, `
		DELETE FROM tags WHERE id NOT IN (SELECT DISTINCT tag_id FROM post_tags)`,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting unused tags: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting deleted tags: %w", err)
	}
	return int(affected), nil
}

// SlugExists reports whether another tag already holds this slug.
func (s *TagStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE slug = ? AND id != ?`, slug, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking tag slug %q: %w", slug, err)
	}
	return n > 0, nil
}

// Attach associates a tag with a post. Used by the (out-of-scope) post
// layer and by tests exercising the unused-tag sweep.
func (s *TagStore) Attach(ctx context.Context, postID, tagID string) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: attaching tag %s to post %s: %w", tagID, postID, err)
	}
	return nil
}
