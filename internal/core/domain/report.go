package domain

import "time"

// FileFailure records a file that could not be ingested.
type FileFailure struct {
	// Path is the source file path.
	Path string

	// Err is the reason.
	Err error
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Scanned is the number of candidate files found.
	Scanned int

	// Skipped counts files whose content was already processed.
	Skipped int

	// Parsed counts files converted, staged and registered.
	Parsed int

	// Failures lists files that failed in isolation.
	Failures []FileFailure

	// Duration is the wall time of the run.
	Duration time.Duration
}

// BatchFailure records an embedding/upsert batch that did not commit.
type BatchFailure struct {
	// Artifacts are the staged files in the batch. They stay on disk.
	Artifacts []string

	// Err is the reason.
	Err error
}

// IndexReport summarises one index build.
type IndexReport struct {
	// Mode is the index mode used.
	Mode IndexMode

	// Artifacts is the number of pending artifacts found.
	Artifacts int

	// Documents is the number of staged documents indexed.
	Documents int

	// Chunks is the number of chunks upserted.
	Chunks int

	// Batches is the number of batches committed.
	Batches int

	// Consumed lists artifacts removed after a committed upsert.
	Consumed []string

	// Failures lists batches or artifacts that did not commit.
	Failures []BatchFailure

	// Duration is the wall time of the build.
	Duration time.Duration
}

// ResetReport lists what a reset removed.
type ResetReport struct {
	// Removed names each removed artifact, store or file.
	Removed []string
}

// Status is a snapshot of the pipeline's persisted state.
type Status struct {
	// TrackedFiles is the number of tracker records.
	TrackedFiles int

	// PendingArtifacts is the number of staged artifacts awaiting indexing.
	PendingArtifacts int

	// Collection is the configured vector collection.
	Collection Collection

	// CollectionExists reports whether the collection has been created.
	CollectionExists bool

	// VectorCount is the number of points in the collection.
	VectorCount int
}

// ProgressFunc receives per-item progress: done of total items, and the
// item just finished. Implementations must be quick; they run inline.
type ProgressFunc func(done, total int, item string)
