package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// VectorStore manages named collections of embedded chunks.
//
// Collection existence is an explicit query rather than an error path:
// callers check CollectionExists before CreateCollection.
type VectorStore interface {
	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// CollectionInfo returns the definition of an existing collection,
	// or domain.ErrCollectionNotFound.
	CollectionInfo(ctx context.Context, name string) (*domain.Collection, error)

	// CreateCollection creates an empty collection.
	CreateCollection(ctx context.Context, c domain.Collection) error

	// DeleteCollection removes the collection and its points.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert writes chunks with embeddings, replacing points with the same
	// chunk ID. It returns only after the write is durable.
	Upsert(ctx context.Context, collection string, chunks []domain.Chunk) error

	// Search returns the k nearest chunks to the query vector, best first.
	Search(ctx context.Context, collection string, query []float32, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// Close releases resources.
	Close() error
}
