package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/converter/docling"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/converter/pdftotext"
	stagingfile "github.com/custodia-labs/lexrag/internal/adapters/driven/staging/file"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexrag/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/core/services"
	"github.com/custodia-labs/lexrag/internal/logger"
	"github.com/custodia-labs/lexrag/internal/metrics"
	"github.com/custodia-labs/lexrag/internal/normalisers/contract"
	"github.com/custodia-labs/lexrag/internal/postprocessors"
)

// qdrantTimeout bounds one Qdrant request.
const qdrantTimeout = 30 * time.Second

// wiring is the composition root: it turns settings into services.
type wiring struct {
	configDir string
}

var _ cli.Wiring = (*wiring)(nil)

// Settings opens config.toml in the config directory. Both directories
// default to ~/.lexrag.
func (w *wiring) Settings(opts cli.Options) (driving.SettingsService, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("%w: home directory: %v", domain.ErrConfig, err)
	}
	w.configDir = opts.ConfigDir
	if w.configDir == "" {
		w.configDir = filepath.Join(home, ".lexrag")
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(home, ".lexrag")
	}

	store, err := file.NewConfigStore(w.configDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator(), dataDir), nil
}

// Build opens the stores and constructs every service the command needs.
// Whatever was opened is closed again when a later step fails.
func (w *wiring) Build(ctx context.Context, s *domain.AppSettings, req cli.Requirements) (_ *cli.App, err error) {
	app := &cli.App{Settings: s, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	store, err := sqlite.NewStore(s.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	app.Closers = append(app.Closers, store)
	tracker := store.Tracker()

	vectors, err := vectorStore(s.VectorStore, store)
	if err != nil {
		return nil, err
	}
	app.Closers = append(app.Closers, vectors)

	cache := stagingfile.New(s.Paths.CacheDir)
	cleaner, err := contract.NewFromFile(s.Ingest.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: cleaning rules: %v", domain.ErrConfig, err)
	}
	app.Ingest = services.NewIngestService(tracker, cache, converter(s.Ingest), cleaner, s.Ingest, app.Metrics)

	collection := domain.Collection{
		Name:       s.VectorStore.Collection,
		Dimensions: s.Embedding.Dimensions,
		Metric:     domain.MetricCosine,
	}
	app.Status = services.NewStatusService(tracker, cache, vectors, collection)

	dbFile := store.Path()
	app.Reset = services.NewResetService(cache, vectors, tracker, s.VectorStore.Collection, store,
		dbFile, dbFile+"-wal", dbFile+"-shm", s.Paths.LogFile)

	if !req.Embedding {
		return app, nil
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &s.Embedding, s.Index.RequestsPerSecond)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	app.Closers = append(app.Closers, embedder)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, s.Index.PipelineConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: chunking pipeline: %v", domain.ErrConfig, err)
	}
	app.Index = services.NewIndexService(cache, vectors, embedder, pipeline,
		s.VectorStore.Collection, s.Index.BatchSize, app.Metrics)
	search := services.NewSearchService(embedder, vectors, s.VectorStore.Collection, s.Chat.TopK)
	app.Search = search

	if !req.LLM && !(req.OptionalLLM && s.LLM.IsConfigured()) {
		return app, nil
	}
	llm, err := ai.CreateAndValidateLLMService(ctx, &s.LLM)
	if err != nil {
		if !req.LLM {
			logger.Warn("LLM unavailable, answering disabled: %v", err)
			return app, nil
		}
		return nil, fmt.Errorf("LLM service: %w", err)
	}
	app.Closers = append(app.Closers, llm)

	prompts, err := file.NewPromptStore(filepath.Join(w.configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("%w: prompts: %v", domain.ErrConfig, err)
	}
	app.Answer = services.NewAnswerService(search, llm, prompts, s.Chat, s.LLM, app.Metrics)
	return app, nil
}

// vectorStore selects the configured backend. The SQLite backend shares
// the tracker database.
func vectorStore(s domain.VectorStoreSettings, store *sqlite.Store) (driven.VectorStore, error) {
	switch s.Backend {
	case domain.VectorBackendQdrant:
		return qdrant.New(qdrant.Config{URL: s.URL, APIKey: s.APIKey, Timeout: qdrantTimeout}), nil
	case domain.VectorBackendSQLite, "":
		return store.VectorStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrConfig, s.Backend)
	}
}

// converter selects the configured document converter.
func converter(s domain.IngestSettings) driven.DocumentConverter {
	if s.Converter == domain.ConverterDocling {
		return docling.New(docling.Config{BaseURL: s.ConverterURL})
	}
	return pdftotext.New()
}
