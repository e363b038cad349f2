package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/fingerprint"
	"github.com/custodia-labs/lexrag/internal/logger"
	"github.com/custodia-labs/lexrag/internal/metrics"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// fileError marks a failure confined to one source file. Any other
// error returned while ingesting a file aborts the run.
type fileError struct {
	err error
}

func (e *fileError) Error() string { return e.err.Error() }
func (e *fileError) Unwrap() error { return e.err }

// IngestService converts new source documents into staged artifacts.
// Work for one file is strictly ordered: fingerprint, tracker check,
// convert, clean, stage, register.
type IngestService struct {
	tracker   driven.IngestionTracker
	cache     driven.StagingCache
	converter driven.DocumentConverter
	cleaner   driven.TextCleaner
	settings  domain.IngestSettings
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewIngestService creates an ingest service. m may be nil.
func NewIngestService(
	tracker driven.IngestionTracker,
	cache driven.StagingCache,
	converter driven.DocumentConverter,
	cleaner driven.TextCleaner,
	settings domain.IngestSettings,
	m *metrics.Metrics,
) *IngestService {
	if len(settings.Extensions) == 0 {
		settings.Extensions = []string{".pdf"}
	}
	if settings.ParseParams == "" {
		settings.ParseParams = domain.DefaultParseParams
	}
	return &IngestService{
		tracker:   tracker,
		cache:     cache,
		converter: converter,
		cleaner:   cleaner,
		settings:  settings,
		metrics:   m,
		now:       time.Now,
	}
}

// Accepts reports whether path has an accepted extension.
func (s *IngestService) Accepts(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range s.settings.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// Forget drops and recreates the tracker.
func (s *IngestService) Forget(ctx context.Context) error {
	if err := s.tracker.Drop(ctx); err != nil {
		return err
	}
	if err := s.tracker.Initialize(ctx); err != nil {
		return err
	}
	logger.Info("Cleared the ingestion tracker, every source will be staged again")
	return nil
}

// Run ingests every unprocessed candidate file in dir, in listing order.
func (s *IngestService) Run(ctx context.Context, dir string, progress domain.ProgressFunc) (*domain.IngestReport, error) {
	start := s.now()
	logger.Section("Ingest")

	candidates, err := s.scan(dir)
	if err != nil {
		return nil, err
	}

	report := &domain.IngestReport{Scanned: len(candidates)}
	logger.Info("Found %d candidate files in %s", len(candidates), dir)

	for i, path := range candidates {
		if err := ctx.Err(); err != nil {
			report.Duration = s.now().Sub(start)
			return report, err
		}
		s.metrics.File(metrics.OutcomeScanned)

		skipped, err := s.ingest(ctx, path)
		var fe *fileError
		switch {
		case errors.As(err, &fe):
			report.Failures = append(report.Failures, domain.FileFailure{Path: path, Err: fe.err})
			s.metrics.File(metrics.OutcomeFailed)
			logger.Error("Failed to ingest %s: %v", filepath.Base(path), fe.err)
		case err != nil:
			report.Duration = s.now().Sub(start)
			logger.Error("Ingest aborted at %s: %v", filepath.Base(path), err)
			return report, err
		case skipped:
			report.Skipped++
			s.metrics.File(metrics.OutcomeSkipped)
		default:
			report.Parsed++
			s.metrics.File(metrics.OutcomeParsed)
		}

		if progress != nil {
			progress(i+1, len(candidates), filepath.Base(path))
		}
	}

	report.Duration = s.now().Sub(start)
	s.metrics.Run("ingest", report.Duration)
	logger.Info("Ingest complete: %d scanned, %d parsed, %d skipped, %d failed in %s",
		report.Scanned, report.Parsed, report.Skipped, len(report.Failures), report.Duration.Round(time.Millisecond))
	return report, nil
}

// IngestFile ingests a single file.
func (s *IngestService) IngestFile(ctx context.Context, path string) (bool, error) {
	s.metrics.File(metrics.OutcomeScanned)
	skipped, err := s.ingest(ctx, path)
	var fe *fileError
	switch {
	case errors.As(err, &fe):
		s.metrics.File(metrics.OutcomeFailed)
		return false, fe.err
	case err != nil:
		return false, err
	case skipped:
		s.metrics.File(metrics.OutcomeSkipped)
	default:
		s.metrics.File(metrics.OutcomeParsed)
	}
	return skipped, nil
}

// scan lists regular files in dir with an accepted extension.
// Subdirectories and dot files are ignored.
func (s *IngestService) scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: source directory %s does not exist", domain.ErrInvalidInput, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read source directory: %v", domain.ErrInvalidInput, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !s.Accepts(name) {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			logger.Debug("Ignoring %s: not a regular file", name)
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ingest processes one file. It returns skipped=true when the content is
// already tracked. Per-file failures are returned as *fileError.
func (s *IngestService) ingest(ctx context.Context, path string) (bool, error) {
	name := filepath.Base(path)

	fp, err := fingerprint.File(path)
	if err != nil {
		return false, &fileError{err: fmt.Errorf("fingerprint: %w", err)}
	}

	done, err := s.tracker.IsProcessed(ctx, fp)
	if err != nil {
		return false, fmt.Errorf("check tracker for %s: %w", name, err)
	}
	if done {
		logger.Info("Skipping %s: already processed (%s)", name, fp.Short())
		return true, nil
	}

	pageRange, err := s.settings.ParsedPageRange()
	if err != nil {
		return false, err
	}

	logger.Info("Parsing %s (%s)", name, fp.Short())
	started := s.now()
	result, err := s.converter.Convert(ctx, path, domain.ConvertOptions{PageRange: pageRange})
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, &fileError{err: err}
	}
	s.metrics.Parse(s.now().Sub(started))

	text := s.cleaner.Clean(result.Markdown)
	if strings.TrimSpace(text) == "" {
		return false, &fileError{err: fmt.Errorf("%w: no text left after cleaning", domain.ErrParse)}
	}

	doc := domain.StagedDocument{
		Text: text,
		Metadata: domain.DocumentMetadata{
			Source:      name,
			Fingerprint: fp,
			TotalPages:  result.Pages,
			Parser:      s.settings.ParserID(),
			PageRange:   pageRange,
		},
	}

	// Stage before registering: a registered fingerprint always has an artifact.
	cachePath, err := s.cache.Write(ctx, fp, []domain.StagedDocument{doc})
	if err != nil {
		return false, fmt.Errorf("stage %s: %w", name, err)
	}

	rec := domain.TrackerRecord{
		Fingerprint: fp,
		FileName:    name,
		CachePath:   cachePath,
		ParseParams: s.settings.ParseParams,
	}
	if err := s.tracker.Register(ctx, rec); err != nil {
		return false, fmt.Errorf("register %s: %w", name, err)
	}

	logger.Info("Staged %s: %d pages, %d chars -> %s", name, result.Pages, len(text), filepath.Base(cachePath))
	return false, nil
}
