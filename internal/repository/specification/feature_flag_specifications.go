package specification

import "gorm.io/gorm"

// ByName filters feature flags by unique name.
type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// EnabledOnly keeps only active feature flags.
type EnabledOnly struct{}

func (s EnabledOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_enabled = ?", true)
}
