package store

import "github.com/google/uuid"

// Turn is a single exchange entry held in the in-memory conversation window.
type Turn struct {
	Id      uuid.UUID `json:"id"`
	Role    string    `json:"role"` // "user" | "assistant"
	Content string    `json:"content"`
}

// Window is the active conversation state for one chat session. The
// summary stands in for every turn that has been evicted from Turns.
type Window struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
	Turns     []Turn `json:"turns"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
