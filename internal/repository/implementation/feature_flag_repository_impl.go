package implementation

import (
	"context"
	"errors"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/mapper"
	"soulscript-be/internal/model"
	"soulscript-be/internal/repository/contract"
	"soulscript-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeatureFlagRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeatureFlagMapper
}

func NewFeatureFlagRepository(db *gorm.DB) contract.FeatureFlagRepository {
	return &FeatureFlagRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeatureFlagMapper(),
	}
}

func (r *FeatureFlagRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FeatureFlagRepositoryImpl) Create(ctx context.Context, flag *entity.FeatureFlag) error {
	m := r.mapper.ToModel(flag)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*flag = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeatureFlagRepositoryImpl) Update(ctx context.Context, flag *entity.FeatureFlag) error {
	m := r.mapper.ToModel(flag)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*flag = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeatureFlagRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FeatureFlag{}, id).Error
}

func (r *FeatureFlagRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FeatureFlag, error) {
	var m model.FeatureFlag
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeatureFlagRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FeatureFlag, error) {
	var models []*model.FeatureFlag
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.FeatureFlag, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *FeatureFlagRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.FeatureFlag, error) {
	return r.FindOne(ctx, specification.ByName{Name: name})
}
