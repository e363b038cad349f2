package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// IndexService embeds staged artifacts into the vector collection.
type IndexService interface {
	// Build indexes every pending artifact using the given mode.
	Build(ctx context.Context, mode domain.IndexMode, progress domain.ProgressFunc) (*domain.IndexReport, error)
}
