package specification

import "gorm.io/gorm"

// ByContentType filters moderation logs by direction tag.
type ByContentType struct {
	ContentType string
}

func (s ByContentType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content_type = ?", s.ContentType)
}

// UserIDLike supports partial user-id lookups in the admin log view.
type UserIDLike struct {
	Pattern string
}

func (s UserIDLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("CAST(user_id AS TEXT) ILIKE ?", "%"+s.Pattern+"%")
}
