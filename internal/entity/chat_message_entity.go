package entity

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole is the closed set of message authors. Only user and assistant
// turns are ever persisted.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid rejects unknown role strings at the boundary.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r MessageRole) String() string {
	return string(r)
}

// ChatMessage is one turn within a session. Canonical conversation order is
// CreatedAt ascending.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Content       string
	Role          MessageRole
	CreatedAt     time.Time
}
