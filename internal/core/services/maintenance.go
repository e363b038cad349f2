package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Ensure the maintenance services implement their interfaces.
var (
	_ driving.ResetService  = (*ResetService)(nil)
	_ driving.StatusService = (*StatusService)(nil)
)

// ResetService returns the pipeline to a pristine state.
type ResetService struct {
	cache      driven.StagingCache
	store      driven.VectorStore
	tracker    driven.IngestionTracker
	collection string
	release    io.Closer
	files      []string
}

// NewResetService creates a reset service. After the stores are cleared,
// release (if not nil) is closed and every path in files is removed.
func NewResetService(
	cache driven.StagingCache,
	store driven.VectorStore,
	tracker driven.IngestionTracker,
	collection string,
	release io.Closer,
	files ...string,
) *ResetService {
	return &ResetService{
		cache:      cache,
		store:      store,
		tracker:    tracker,
		collection: collection,
		release:    release,
		files:      files,
	}
}

// Reset clears the staging cache, deletes the collection, drops the
// tracker and removes the configured files. It stops at the first
// failure; what was removed so far is still reported.
func (s *ResetService) Reset(ctx context.Context) (*domain.ResetReport, error) {
	logger.Section("Reset")
	report := &domain.ResetReport{}

	if err := s.cache.Clear(ctx); err != nil {
		return report, err
	}
	report.Removed = append(report.Removed, "staging cache "+s.cache.Dir())

	exists, err := s.store.CollectionExists(ctx, s.collection)
	if err != nil {
		return report, fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if exists {
		if err := s.store.DeleteCollection(ctx, s.collection); err != nil {
			return report, err
		}
		report.Removed = append(report.Removed, "collection "+s.collection)
	}

	if err := s.tracker.Drop(ctx); err != nil {
		return report, err
	}
	report.Removed = append(report.Removed, "ingestion tracker")

	if s.release != nil {
		if err := s.release.Close(); err != nil {
			return report, fmt.Errorf("%w: close database: %v", domain.ErrStorage, err)
		}
	}

	for _, path := range s.files {
		err := os.Remove(path)
		switch {
		case err == nil:
			report.Removed = append(report.Removed, path)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return report, fmt.Errorf("%w: remove %s: %v", domain.ErrStorage, path, err)
		}
	}

	for _, item := range report.Removed {
		logger.Info("Removed %s", item)
	}
	return report, nil
}

// StatusService reports the pipeline's persisted state.
type StatusService struct {
	tracker    driven.IngestionTracker
	cache      driven.StagingCache
	store      driven.VectorStore
	collection domain.Collection
}

// NewStatusService creates a status service. collection is reported as
// configured when it does not exist yet.
func NewStatusService(
	tracker driven.IngestionTracker,
	cache driven.StagingCache,
	store driven.VectorStore,
	collection domain.Collection,
) *StatusService {
	return &StatusService{
		tracker:    tracker,
		cache:      cache,
		store:      store,
		collection: collection,
	}
}

// Status returns a snapshot.
func (s *StatusService) Status(ctx context.Context) (*domain.Status, error) {
	tracked, err := s.tracker.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tracked files: %w", err)
	}
	pending, err := s.cache.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staged artifacts: %w", err)
	}

	status := &domain.Status{
		TrackedFiles:     tracked,
		PendingArtifacts: len(pending),
		Collection:       s.collection,
	}

	exists, err := s.store.CollectionExists(ctx, s.collection.Name)
	if err != nil {
		return nil, fmt.Errorf("check collection %s: %w", s.collection.Name, err)
	}
	if !exists {
		return status, nil
	}

	info, err := s.store.CollectionInfo(ctx, s.collection.Name)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx, s.collection.Name)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	status.Collection = *info
	status.CollectionExists = true
	status.VectorCount = count
	return status, nil
}
