// Package models contains database model definitions.
package models

// Setting represents a runtime configuration setting stored in the database.
// The authorization engine reads its runtime toggles (fail policy, audit mode)
// from this table.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique"`
	Value []byte `gorm:"type:blob"`
}
