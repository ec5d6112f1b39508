package implementation

import (
	"context"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/mapper"
	"soulscript-be/internal/model"
	"soulscript-be/internal/repository/contract"
	"soulscript-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentChunkRepositoryImpl) DeleteByOwnerId(ctx context.Context, ownerId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerId).
		Delete(&model.DocumentChunk{}).Error
}

// SearchSimilar orders by pgvector cosine distance: embedding <=> vector.
// A nil ownerId restricts the search to shared chunks (owner_id IS NULL).
func (r *DocumentChunkRepositoryImpl) SearchSimilar(ctx context.Context, ownerId *uuid.UUID, embedding []float32, limit int) ([]*entity.DocumentChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.DocumentChunk

	query := r.db.WithContext(ctx)
	if ownerId != nil {
		query = query.Where("owner_id = ? OR owner_id IS NULL", *ownerId)
	} else {
		query = query.Where("owner_id IS NULL")
	}

	err := query.
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.DocumentChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DocumentChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
