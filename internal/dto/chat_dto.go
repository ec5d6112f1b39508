package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Sessions ---

type CreateSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type CreateAnonSessionRequest struct {
	AnonToken string `json:"anon_token" validate:"required,min=8,max=64"`
	Title     string `json:"title,omitempty"`
}

type SessionResponse struct {
	Id            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	IsActive      bool      `json:"is_active"`
	IsBlocked     bool      `json:"is_blocked"`
	BlockedReason string    `json:"blocked_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SessionSummaryResponse struct {
	SessionId           uuid.UUID  `json:"session_id"`
	ConversationSummary string     `json:"conversation_summary"`
	SummaryUpdatedAt    *time.Time `json:"summary_updated_at,omitempty"`
	WindowMessageCount  int        `json:"window_message_count"`
}

type UpdateSessionTitleRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// --- Messages ---

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	UserMessage *MessageResponse `json:"user_message,omitempty"`
	AIMessage   *MessageResponse `json:"ai_message,omitempty"`
	Blocked     bool             `json:"blocked"`
	BlockReason string           `json:"block_reason,omitempty"`

	// SafetyMessage is the client-facing text shown instead of a model
	// reply when content was blocked. Never persisted.
	SafetyMessage string `json:"safety_message,omitempty"`
}
