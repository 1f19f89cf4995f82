package model

import "time"

// Tag is a flat label attached to posts through the post_tags join table.
// Slug is unique among tags (a separate uniqueness scope from categories).
type Tag struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	Slug      string    `json:"slug"      db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// PostCount is a denormalized count filled in by List; it drives the
	// unused-tag sweep in the admin UI.
	PostCount int `json:"postCount" db:"-"`
}
