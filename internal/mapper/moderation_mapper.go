package mapper

import (
	"soulscript-be/internal/entity"
	"soulscript-be/internal/model"

	"gorm.io/datatypes"
)

type ModerationMapper struct{}

func NewModerationMapper() *ModerationMapper {
	return &ModerationMapper{}
}

func (m *ModerationMapper) ToEntity(l *model.ModerationLog) *entity.ModerationLog {
	if l == nil {
		return nil
	}

	return &entity.ModerationLog{
		Id:              l.Id,
		UserId:          l.UserId,
		AnonSessionId:   l.AnonSessionId,
		ChatSessionId:   l.ChatSessionId,
		ContentType:     entity.ModerationContentType(l.ContentType),
		OriginalContent: l.OriginalContent,
		BlockedReason:   l.BlockedReason,
		CategoryScores:  map[string]interface{}(l.CategoryScores),
		CreatedAt:       l.CreatedAt,
	}
}

func (m *ModerationMapper) ToModel(l *entity.ModerationLog) *model.ModerationLog {
	if l == nil {
		return nil
	}

	return &model.ModerationLog{
		Id:              l.Id,
		UserId:          l.UserId,
		AnonSessionId:   l.AnonSessionId,
		ChatSessionId:   l.ChatSessionId,
		ContentType:     l.ContentType.String(),
		OriginalContent: l.OriginalContent,
		BlockedReason:   l.BlockedReason,
		CategoryScores:  datatypes.JSONMap(l.CategoryScores),
		CreatedAt:       l.CreatedAt,
	}
}

func (m *ModerationMapper) ToEntities(models []*model.ModerationLog) []*entity.ModerationLog {
	entities := make([]*entity.ModerationLog, len(models))
	for i, l := range models {
		entities[i] = m.ToEntity(l)
	}
	return entities
}
