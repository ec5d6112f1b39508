package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is a persisted conversation thread. Exactly one of OwnerId and
// AnonSessionId is set: registered users own sessions by id, anonymous
// visitors by opaque token.
type ChatSession struct {
	Id            uuid.UUID
	OwnerId       *uuid.UUID
	AnonSessionId *string
	Title         string
	IsActive      bool

	// Once blocked a session stays blocked. Blocked sessions reject new
	// messages and cannot be deleted (compliance retention).
	IsBlocked     bool
	BlockedReason string

	// Running summary of turns evicted from the conversation window.
	ConversationSummary  string
	SummaryUpdatedAt     time.Time
	LastSummaryMessageId string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// OwnedBy reports whether the given actor may act on this session.
func (s *ChatSession) OwnedBy(actor Actor) bool {
	if actor.UserId != nil {
		return s.OwnerId != nil && *s.OwnerId == *actor.UserId
	}
	if actor.AnonToken != "" {
		return s.AnonSessionId != nil && *s.AnonSessionId == actor.AnonToken
	}
	return false
}

// Actor identifies the caller of a chat operation: a registered user id or an
// anonymous session token, never both.
type Actor struct {
	UserId    *uuid.UUID
	AnonToken string
}

func (a Actor) IsAnonymous() bool {
	return a.UserId == nil
}
