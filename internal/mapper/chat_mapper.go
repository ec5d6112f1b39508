package mapper

import (
	"time"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/model"

	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:                   s.Id,
		OwnerId:              s.OwnerId,
		AnonSessionId:        s.AnonSessionId,
		Title:                s.Title,
		IsActive:             s.IsActive,
		IsBlocked:            s.IsBlocked,
		BlockedReason:        s.BlockedReason,
		ConversationSummary:  s.ConversationSummary,
		SummaryUpdatedAt:     s.SummaryUpdatedAt,
		LastSummaryMessageId: s.LastSummaryMessageId,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
		IsDeleted:            s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:                   s.Id,
		OwnerId:              s.OwnerId,
		AnonSessionId:        s.AnonSessionId,
		Title:                s.Title,
		IsActive:             s.IsActive,
		IsBlocked:            s.IsBlocked,
		BlockedReason:        s.BlockedReason,
		ConversationSummary:  s.ConversationSummary,
		SummaryUpdatedAt:     s.SummaryUpdatedAt,
		LastSummaryMessageId: s.LastSummaryMessageId,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Content:       msg.Content,
		Role:          entity.MessageRole(msg.Role),
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Content:       msg.Content,
		Role:          msg.Role.String(),
		CreatedAt:     msg.CreatedAt,
	}
}
