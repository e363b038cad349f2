package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// IngestionTracker durably records which content fingerprints have been
// parsed and staged. Failures are wrapped in domain.ErrStorage.
type IngestionTracker interface {
	// Initialize creates the backing schema. Safe to call repeatedly.
	Initialize(ctx context.Context) error

	// IsProcessed reports whether a record exists for the fingerprint.
	IsProcessed(ctx context.Context, fp domain.Fingerprint) (bool, error)

	// Register inserts or replaces the record for rec.Fingerprint.
	Register(ctx context.Context, rec domain.TrackerRecord) error

	// Get returns the record for a fingerprint, or domain.ErrNotFound.
	Get(ctx context.Context, fp domain.Fingerprint) (*domain.TrackerRecord, error)

	// List returns all records ordered by update time, newest first.
	List(ctx context.Context) ([]domain.TrackerRecord, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// Drop removes every record and the backing schema.
	Drop(ctx context.Context) error

	// Close releases resources.
	Close() error
}
