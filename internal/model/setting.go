package model

import "time"

// SettingType declares how a Setting's stored text decodes.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// Valid reports whether t is one of the four known setting types.
func (t SettingType) Valid() bool {
	switch t {
	case SettingString, SettingNumber, SettingBoolean, SettingJSON:
		return true
	}
	return false
}

// Setting is a typed key-value record. Value is always stored as text;
// the invariant is that Value decodes according to Type. The setting
// service enforces this on every write, so reads can trust the pair.
type Setting struct {
	Key         string      `json:"key"         db:"key"`
	Value       string      `json:"value"       db:"value"`
	Type        SettingType `json:"type"        db:"type"`
	Description string      `json:"description" db:"description"`
	UpdatedAt   time.Time   `json:"updatedAt"   db:"updated_at"`
}
