package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/repository"
)

var _ repository.SettingRepository = (*SettingStore)(nil)

// SettingStore persists the typed key-value settings.
type SettingStore struct {
	db *DB
}

func (s *SettingStore) Get(ctx context.Context, key string) (*model.Setting, error) {
	var st model.Setting
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT key, value, type, description, updated_at FROM settings WHERE key = ?`, key,
	).Scan(&st.Key, &st.Value, &st.Type, &st.Description, &st.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("setting", key)
		}
		return nil, fmt.Errorf("sqlite: getting setting %q: %w", key, err)
	}
	return &st, nil
}

func (s *SettingStore) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT key, value, type, description, updated_at FROM settings ORDER BY key`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var st model.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.Type, &st.Description, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning setting row: %w", err)
		}
		settings = append(settings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating setting rows: %w", err)
	}

	return settings, nil
}

// Upsert inserts or rewrites a setting by key. ON CONFLICT keeps the
// write atomic — no read-then-write race on concurrent saves of the
// same key.
func (s *SettingStore) Upsert(ctx context.Context, setting *model.Setting) error {
	setting.UpdatedAt = time.Now()

	_, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value, type, description, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			type = excluded.type,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		setting.Key,
		setting.Value,
		setting.Type,
		setting.Description,
		setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting setting %q: %w", setting.Key, err)
	}
	return nil
}
