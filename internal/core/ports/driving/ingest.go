package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// IngestService converts new source documents into staged artifacts.
type IngestService interface {
	// Run scans dir and ingests every unprocessed matching file.
	// Per-file failures are reported, storage failures abort the run.
	Run(ctx context.Context, dir string, progress domain.ProgressFunc) (*domain.IngestReport, error)

	// IngestFile ingests a single file. It returns skipped=true when the
	// content was already processed.
	IngestFile(ctx context.Context, path string) (skipped bool, err error)

	// Forget clears every tracker record so the next Run stages every
	// source again.
	Forget(ctx context.Context) error

	// Accepts reports whether path has an accepted extension.
	Accepts(path string) bool
}
