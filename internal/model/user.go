// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is a user's access tier. The three tiers form a strict order:
// admin > editor > author. Rank comparison lives in internal/auth/policy.go;
// the model only guarantees the value is one of the three constants.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// Valid reports whether r is one of the three known roles.
// Checked before any user row is written so an unknown role never
// reaches the database.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleAuthor:
		return true
	}
	return false
}

// User represents a staff account.
//
// PasswordHash carries the bcrypt digest and is never serialized —
// the `json:"-"` tag keeps it out of every API response, so handlers
// can return a *User directly without a separate public-view struct.
//
// Email is unique case-insensitively across active AND inactive accounts.
// Deactivation (IsActive=false) preserves the row; only the explicit
// hard-delete path removes it.
type User struct {
	ID           string     `json:"id"          db:"id"`
	Email        string     `json:"email"       db:"email"`
	Name         string     `json:"name"        db:"name"`
	PasswordHash string     `json:"-"           db:"password_hash"`
	Role         Role       `json:"role"        db:"role"`
	IsActive     bool       `json:"isActive"    db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt"   db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt"   db:"updated_at"`
	LastLoginAt  *time.Time `json:"lastLoginAt" db:"last_login_at"` // nil until first login
}
