package dto

import (
	"time"

	"github.com/google/uuid"
)

type ModerationLogListRequest struct {
	Page        int    `query:"page"`
	Limit       int    `query:"limit"`
	ContentType string `query:"content_type"`
	UserId      string `query:"user_id"`
}

type ModerationLogResponse struct {
	Id              uuid.UUID              `json:"id"`
	UserId          *uuid.UUID             `json:"user_id,omitempty"`
	AnonSessionId   *string                `json:"anon_session_id,omitempty"`
	ChatSessionId   *uuid.UUID             `json:"chat_session_id,omitempty"`
	ContentType     string                 `json:"content_type"`
	OriginalContent string                 `json:"original_content"`
	BlockedReason   string                 `json:"blocked_reason"`
	CategoryScores  map[string]interface{} `json:"category_scores,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ModerationLogListResponse struct {
	Logs  []ModerationLogResponse `json:"logs"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type ModerationStatsResponse struct {
	TotalBlocked    int64 `json:"total_blocked"`
	BlockedToday    int64 `json:"blocked_today"`
	UserInputCount  int64 `json:"user_input_count"`
	AIResponseCount int64 `json:"ai_response_count"`
	BlockedSessions int64 `json:"blocked_sessions"`
}

// ModerationViolationMessage is the payload published on the internal
// bus when content is blocked.
type ModerationViolationMessage struct {
	SessionId     uuid.UUID  `json:"session_id"`
	UserId        *uuid.UUID `json:"user_id,omitempty"`
	AnonSessionId *string    `json:"anon_session_id,omitempty"`
	ContentType   string     `json:"content_type"`
	Reason        string     `json:"reason"`
	OccurredAt    time.Time  `json:"occurred_at"`
}
