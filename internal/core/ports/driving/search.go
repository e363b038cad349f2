package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// SearchService retrieves the chunks most similar to a query.
type SearchService interface {
	// Search embeds the query and returns the nearest chunks.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// AnswerService answers questions from retrieved context.
type AnswerService interface {
	// Ask retrieves context and generates one answer.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
