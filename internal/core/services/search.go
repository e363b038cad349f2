package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs semantic retrieval over the vector collection.
type SearchService struct {
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	collection string
	topK       int
}

// NewSearchService creates a new search service.
func NewSearchService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	collection string,
	topK int,
) *SearchService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &SearchService{
		embedder:   embedder,
		store:      store,
		collection: collection,
		topK:       topK,
	}
}

// Search embeds the query and returns the nearest chunks, best first.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = s.topK
	}

	exists, err := s.store.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s (run 'lexrag index' first)", domain.ErrCollectionNotFound, s.collection)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, s.collection, vector, opts)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.collection, err)
	}

	logger.Debug("Retrieved %d results", len(results))
	if len(results) > 0 {
		logger.Debug("Top score %.4f from %s", results[0].Score, results[0].Chunk.Source())
	}
	return results, nil
}
