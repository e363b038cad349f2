package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// ResetService returns the pipeline to a pristine state.
type ResetService interface {
	// Reset removes the staging cache, vector collection, tracker and log.
	Reset(ctx context.Context) (*domain.ResetReport, error)
}

// StatusService reports the pipeline's persisted state.
type StatusService interface {
	// Status returns a snapshot.
	Status(ctx context.Context) (*domain.Status, error)
}
