package model

import "time"

// Category is a node in the taxonomy forest. ParentID is nil for root
// categories. Each node has at most one parent; a node may never be its
// own parent, and a parent change may not introduce a cycle — both rules
// are enforced by the category service before anything is persisted.
//
// Slug is globally unique among categories (its own uniqueness scope).
type Category struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Slug        string    `json:"slug"        db:"slug"`
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color"       db:"color"` // hex color for UI badges, may be empty
	ParentID    *string   `json:"parentId"    db:"parent_id"`
	SortOrder   int       `json:"sortOrder"   db:"sort_order"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	// Children is populated only by tree assembly (GetTree); it is not
	// a stored column.
	Children []*Category `json:"children,omitempty" db:"-"`
}
