package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
	"github.com/custodia-labs/lexrag/internal/metrics"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService embeds staged artifacts into the vector collection.
//
// Artifacts are grouped into batches of whole artifacts. A batch is
// embedded and upserted as a unit; its artifacts are consumed only after
// the upsert returns. A failed batch leaves its artifacts staged so the
// next build retries exactly that subset.
type IndexService struct {
	cache      driven.StagingCache
	store      driven.VectorStore
	embedder   driven.EmbeddingService
	pipeline   driven.PostProcessorPipeline
	collection string
	batchSize  int
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewIndexService creates an index service. m may be nil.
func NewIndexService(
	cache driven.StagingCache,
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	collection string,
	batchSize int,
	m *metrics.Metrics,
) *IndexService {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	return &IndexService{
		cache:      cache,
		store:      store,
		embedder:   embedder,
		pipeline:   pipeline,
		collection: collection,
		batchSize:  batchSize,
		metrics:    m,
		now:        time.Now,
	}
}

// artifact is a staged file turned into chunks ready to embed.
type artifact struct {
	path      string
	documents int
	chunks    []domain.Chunk
}

// Build indexes every pending artifact.
func (s *IndexService) Build(ctx context.Context, mode domain.IndexMode, progress domain.ProgressFunc) (*domain.IndexReport, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: index mode %q", domain.ErrInvalidInput, mode)
	}
	start := s.now()
	logger.Section("Index")

	paths, err := s.cache.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staged artifacts: %w", err)
	}
	if mode == domain.IndexFullRebuild && len(paths) == 0 {
		if err := s.refuseEmptyRebuild(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.ensureCollection(ctx, mode); err != nil {
		return nil, err
	}

	report := &domain.IndexReport{Mode: mode, Artifacts: len(paths)}
	if len(paths) == 0 {
		logger.Info("No staged artifacts to index")
		report.Duration = s.now().Sub(start)
		return report, nil
	}
	logger.Info("Indexing %d staged artifacts into %s (batches of %d chunks)", len(paths), s.collection, s.batchSize)

	done := 0
	advance := func(items []string) {
		for _, item := range items {
			done++
			if progress != nil {
				progress(done, len(paths), filepath.Base(item))
			}
		}
	}

	var batch []artifact
	size := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.commit(ctx, batch, report)
		names := make([]string, len(batch))
		for i := range batch {
			names[i] = batch[i].path
		}
		advance(names)
		batch, size = nil, 0
		return err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			report.Duration = s.now().Sub(start)
			return report, err
		}

		art, err := s.prepare(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				report.Duration = s.now().Sub(start)
				return report, ctx.Err()
			}
			report.Failures = append(report.Failures, domain.BatchFailure{Artifacts: []string{path}, Err: err})
			logger.Error("Skipping artifact %s: %v", filepath.Base(path), err)
			advance([]string{path})
			continue
		}

		if len(batch) > 0 && size+len(art.chunks) > s.batchSize {
			if err := flush(); err != nil {
				report.Duration = s.now().Sub(start)
				return report, err
			}
		}
		batch = append(batch, art)
		size += len(art.chunks)
		report.Documents += art.documents
	}
	if err := flush(); err != nil {
		report.Duration = s.now().Sub(start)
		return report, err
	}

	report.Duration = s.now().Sub(start)
	s.metrics.Run("index", report.Duration)
	logger.Info("Index complete: %d documents, %d chunks in %d batches, %d artifacts consumed, %d failed in %s",
		report.Documents, report.Chunks, report.Batches, len(report.Consumed), len(report.Failures),
		report.Duration.Round(time.Millisecond))
	return report, nil
}

// refuseEmptyRebuild stops a full rebuild that would drop a populated
// collection with nothing staged to refill it. Sources must be staged
// again first, which is what run --full does.
func (s *IndexService) refuseEmptyRebuild(ctx context.Context) error {
	exists, err := s.store.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if !exists {
		return nil
	}
	n, err := s.store.Count(ctx, s.collection)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: collection %s holds %d points and nothing is staged; a full rebuild would leave it empty",
			domain.ErrNothingStaged, s.collection, n)
	}
	return nil
}

// ensureCollection makes sure the collection exists with the embedder's
// dimensions. A full rebuild drops it first.
func (s *IndexService) ensureCollection(ctx context.Context, mode domain.IndexMode) error {
	dims := s.embedder.Dimensions()

	exists, err := s.store.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", s.collection, err)
	}

	if exists && mode == domain.IndexFullRebuild {
		if err := s.store.DeleteCollection(ctx, s.collection); err != nil {
			return err
		}
		logger.Info("Dropped collection %s for full rebuild", s.collection)
		exists = false
	}

	if !exists {
		c := domain.Collection{Name: s.collection, Dimensions: dims, Metric: domain.MetricCosine}
		if err := s.store.CreateCollection(ctx, c); err != nil {
			return err
		}
		logger.Info("Created collection %s (%d dimensions, cosine)", s.collection, dims)
		return nil
	}

	info, err := s.store.CollectionInfo(ctx, s.collection)
	if err != nil {
		return err
	}
	if info.Dimensions != dims {
		return fmt.Errorf("%w: collection %s has %d dimensions but %s produces %d; run a full rebuild",
			domain.ErrDimensionMismatch, s.collection, info.Dimensions, s.embedder.ModelName(), dims)
	}
	logger.Info("Using existing collection %s", s.collection)
	return nil
}

// prepare reads an artifact and chunks every document in it.
func (s *IndexService) prepare(ctx context.Context, path string) (artifact, error) {
	docs, err := s.cache.Read(ctx, path)
	if err != nil {
		return artifact{}, err
	}

	art := artifact{path: path, documents: len(docs)}
	for i, staged := range docs {
		chunks, err := s.pipeline.Process(ctx, domain.NewDocument(staged, i))
		if err != nil {
			return artifact{}, fmt.Errorf("chunk %s: %w", staged.Metadata.Source, err)
		}
		art.chunks = append(art.chunks, chunks...)
	}
	logger.Debug("Prepared %s: %d documents, %d chunks", filepath.Base(path), art.documents, len(art.chunks))
	return art, nil
}

// commit embeds and upserts one batch, then consumes its artifacts.
// Embedding and upsert failures are recorded in the report and the
// artifacts kept. Cancellation, a vector of the wrong size and consume
// failures are returned.
func (s *IndexService) commit(ctx context.Context, batch []artifact, report *domain.IndexReport) error {
	var chunks []domain.Chunk
	paths := make([]string, len(batch))
	for i := range batch {
		chunks = append(chunks, batch[i].chunks...)
		paths[i] = batch[i].path
	}

	started := s.now()
	err := s.embed(ctx, chunks)
	if err == nil {
		err = s.store.Upsert(ctx, s.collection, chunks)
	}
	elapsed := s.now().Sub(started)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return err
		}
		s.metrics.Batch(metrics.BatchFailed, len(chunks), elapsed)
		report.Failures = append(report.Failures, domain.BatchFailure{Artifacts: paths, Err: err})
		logger.Error("Batch of %d artifacts (%d chunks) failed, keeping them staged: %v", len(batch), len(chunks), err)
		return nil
	}

	s.metrics.Batch(metrics.BatchUpserted, len(chunks), elapsed)
	report.Batches++
	report.Chunks += len(chunks)
	logger.Info("Upserted batch %d: %d chunks from %d artifacts", report.Batches, len(chunks), len(batch))

	for _, path := range paths {
		if err := s.cache.Consume(ctx, path); err != nil {
			return fmt.Errorf("consume %s: %w", filepath.Base(path), err)
		}
		report.Consumed = append(report.Consumed, path)
		s.metrics.Consumed(1)
		logger.Info("Removed processed artifact %s", filepath.Base(path))
	}
	return nil
}

// embed fills in chunk embeddings, at most batchSize texts per request.
func (s *IndexService) embed(ctx context.Context, chunks []domain.Chunk) error {
	dims := s.embedder.Dimensions()
	for lo := 0; lo < len(chunks); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(chunks))
		texts := make([]string, hi-lo)
		for i := range texts {
			texts[i] = chunks[lo+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}
		for i, v := range vectors {
			if len(v) != dims {
				return fmt.Errorf("%w: embedding has %d dimensions, expected %d", domain.ErrDimensionMismatch, len(v), dims)
			}
			chunks[lo+i].Embedding = v
		}
	}
	return nil
}
