package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// PostProcessor is one chunking step. The first step of a pipeline
// receives nil and creates chunks from the document; later steps refine
// the chunks they are given (for example splitting oversized sections).
type PostProcessor interface {
	// Name identifies the step in configuration and error messages.
	Name() string

	// Process returns the chunks after this step.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns a staged document into indexable chunks.
type PostProcessorPipeline interface {
	// Process runs every step and returns chunks with contiguous
	// positions and stable IDs.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
