package retrieval

import (
	"context"
	"fmt"

	"soulscript-be/internal/repository/contract"
	"soulscript-be/pkg/embedding"

	"github.com/google/uuid"
)

// PgvectorRetriever embeds the query and runs a cosine-distance search
// over stored document chunks.
type PgvectorRetriever struct {
	chunks   contract.DocumentChunkRepository
	embedder embedding.EmbeddingProvider
}

var _ Retriever = &PgvectorRetriever{}

func NewPgvectorRetriever(chunks contract.DocumentChunkRepository, embedder embedding.EmbeddingProvider) *PgvectorRetriever {
	return &PgvectorRetriever{
		chunks:   chunks,
		embedder: embedder,
	}
}

func (r *PgvectorRetriever) Search(ctx context.Context, ownerId *uuid.UUID, query string, k int) ([]Excerpt, error) {
	embRes, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.chunks.SearchSimilar(ctx, ownerId, embRes.Embedding.Values, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	excerpts := make([]Excerpt, len(chunks))
	for i, chunk := range chunks {
		excerpts[i] = Excerpt{
			Title:   chunk.Title,
			Content: chunk.Content,
		}
	}
	return excerpts, nil
}
