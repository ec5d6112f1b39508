package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ModerationLog struct {
	Id              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          *uuid.UUID        `gorm:"type:uuid;index"`
	AnonSessionId   *string           `gorm:"type:varchar(64)"`
	ChatSessionId   *uuid.UUID        `gorm:"type:uuid;index"`
	ContentType     string            `gorm:"type:varchar(20);not null;index"` // "user_input" or "ai_response"
	OriginalContent string            `gorm:"type:text;not null"`
	BlockedReason   string            `gorm:"type:varchar(500);not null"`
	CategoryScores  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt       time.Time         `gorm:"autoCreateTime;index"`
}

func (ModerationLog) TableName() string {
	return "moderation_logs"
}
