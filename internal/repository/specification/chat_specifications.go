package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByChatSessionID filters messages and logs by parent session.
type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// OwnedByUser filters sessions by registered owner.
type OwnedByUser struct {
	UserID uuid.UUID
}

func (s OwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.UserID)
}

// ByAnonSessionID filters sessions by anonymous token.
type ByAnonSessionID struct {
	Token string
}

func (s ByAnonSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("anon_session_id = ?", s.Token)
}
