package mapper

import (
	"time"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/model"
)

type FeatureFlagMapper struct{}

func NewFeatureFlagMapper() *FeatureFlagMapper {
	return &FeatureFlagMapper{}
}

func (m *FeatureFlagMapper) ToEntity(f *model.FeatureFlag) *entity.FeatureFlag {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.FeatureFlag{
		Id:           f.Id,
		Name:         f.Name,
		Description:  f.Description,
		IsEnabled:    f.IsEnabled,
		IsPredefined: f.IsPredefined,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *FeatureFlagMapper) ToModel(f *entity.FeatureFlag) *model.FeatureFlag {
	if f == nil {
		return nil
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.FeatureFlag{
		Id:           f.Id,
		Name:         f.Name,
		Description:  f.Description,
		IsEnabled:    f.IsEnabled,
		IsPredefined: f.IsPredefined,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *FeatureFlagMapper) ToEntities(models []*model.FeatureFlag) []*entity.FeatureFlag {
	entities := make([]*entity.FeatureFlag, len(models))
	for i, f := range models {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
