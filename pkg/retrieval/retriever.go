package retrieval

import (
	"context"

	"github.com/google/uuid"
)

// Excerpt is a retrieved slice of a stored document.
type Excerpt struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Retriever finds the excerpts most relevant to a query.
type Retriever interface {
	Search(ctx context.Context, ownerId *uuid.UUID, query string, k int) ([]Excerpt, error)
}
