package entity

import (
	"time"

	"github.com/google/uuid"
)

// ModerationContentType tags which direction of the conversation was blocked.
type ModerationContentType string

const (
	ContentTypeUserInput  ModerationContentType = "user_input"
	ContentTypeAIResponse ModerationContentType = "ai_response"
)

func (t ModerationContentType) Valid() bool {
	return t == ContentTypeUserInput || t == ContentTypeAIResponse
}

func (t ModerationContentType) String() string {
	return string(t)
}

// ModerationLog records a blocked verdict. Allowed content produces no entry.
// The log references but does not own its session; session deletion cascades
// logs away.
type ModerationLog struct {
	Id              uuid.UUID
	UserId          *uuid.UUID
	AnonSessionId   *string
	ChatSessionId   *uuid.UUID
	ContentType     ModerationContentType
	OriginalContent string
	BlockedReason   string
	CategoryScores  map[string]interface{}
	CreatedAt       time.Time
}
