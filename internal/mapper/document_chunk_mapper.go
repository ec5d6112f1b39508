package mapper

import (
	"soulscript-be/internal/entity"
	"soulscript-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	return &entity.DocumentChunk{
		Id:        c.Id,
		OwnerId:   c.OwnerId,
		Title:     c.Title,
		Content:   c.Content,
		Embedding: c.Embedding.Slice(),
		CreatedAt: c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	return &model.DocumentChunk{
		Id:        c.Id,
		OwnerId:   c.OwnerId,
		Title:     c.Title,
		Content:   c.Content,
		Embedding: pgvector.NewVector(c.Embedding),
		CreatedAt: c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToEntities(models []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(models))
	for i, c := range models {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
