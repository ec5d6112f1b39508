package contract

import (
	"context"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	DeleteByOwnerId(ctx context.Context, ownerId uuid.UUID) error
	// SearchSimilar returns the k chunks closest to the query embedding by
	// cosine distance, restricted to the given owner when ownerId is non-nil.
	SearchSimilar(ctx context.Context, ownerId *uuid.UUID, embedding []float32, k int) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
