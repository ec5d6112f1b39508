package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId       *uuid.UUID `gorm:"type:uuid;index"` // Registered owner; nil for anonymous sessions
	AnonSessionId *string    `gorm:"type:varchar(64);uniqueIndex"`
	Title         string     `gorm:"type:varchar(255);not null"`
	IsActive      bool       `gorm:"not null;default:true"`

	IsBlocked     bool   `gorm:"not null;default:false;index"`
	BlockedReason string `gorm:"type:varchar(500);not null;default:''"`

	ConversationSummary  string    `gorm:"type:varchar(5000);not null;default:''"`
	SummaryUpdatedAt     time.Time `gorm:"autoCreateTime"`
	LastSummaryMessageId string    `gorm:"type:varchar(64);not null;default:''"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
