package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// StagingCache holds one artifact per fingerprint between ingestion and
// indexing. The presence of an artifact means it is pending.
type StagingCache interface {
	// Write stores docs as the artifact for fp, replacing any previous one,
	// and returns its path. A partially written artifact is never visible.
	Write(ctx context.Context, fp domain.Fingerprint, docs []domain.StagedDocument) (string, error)

	// ListPending returns the paths of all artifacts.
	ListPending(ctx context.Context) ([]string, error)

	// Read decodes and validates an artifact.
	Read(ctx context.Context, path string) ([]domain.StagedDocument, error)

	// Consume deletes an artifact. A missing artifact is not an error.
	Consume(ctx context.Context, path string) error

	// Clear deletes every artifact and the cache directory.
	Clear(ctx context.Context) error

	// Dir returns the cache directory.
	Dir() string
}
