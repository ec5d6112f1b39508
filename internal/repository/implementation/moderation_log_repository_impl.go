package implementation

import (
	"context"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/mapper"
	"soulscript-be/internal/model"
	"soulscript-be/internal/repository/contract"
	"soulscript-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModerationLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ModerationMapper
}

func NewModerationLogRepository(db *gorm.DB) contract.ModerationLogRepository {
	return &ModerationLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewModerationMapper(),
	}
}

func (r *ModerationLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ModerationLogRepositoryImpl) Create(ctx context.Context, log *entity.ModerationLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *ModerationLogRepositoryImpl) DeleteByChatSessionId(ctx context.Context, chatSessionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_session_id = ?", chatSessionId).
		Delete(&model.ModerationLog{}).Error
}

func (r *ModerationLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModerationLog, error) {
	var models []*model.ModerationLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ModerationLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ModerationLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ModerationLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
