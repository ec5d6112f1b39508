package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one embedded excerpt of an uploaded document. The chat
// pipeline only reads these; chunking and embedding happen in the ingestion
// pipeline.
type DocumentChunk struct {
	Id        uuid.UUID
	OwnerId   *uuid.UUID
	Title     string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}
