package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

var errBoom = errors.New("boom")

// fakeConverter returns the file contents as markdown.
type fakeConverter struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	pages int
	opts  []domain.ConvertOptions
}

func (c *fakeConverter) Name() string { return "fake" }

func (c *fakeConverter) Convert(_ context.Context, path string, opts domain.ConvertOptions) (*domain.ConversionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := filepath.Base(path)
	c.calls = append(c.calls, name)
	c.opts = append(c.opts, opts)
	if err := c.fail[name]; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pages := c.pages
	if pages == 0 {
		pages = 1
	}
	return &domain.ConversionResult{Markdown: string(data), Pages: pages, Parser: "fake"}, nil
}

// trimCleaner drops lines equal to "BOILERPLATE" and trims.
type trimCleaner struct{}

func (trimCleaner) Clean(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if line != "BOILERPLATE" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// fakeEmbedder embeds text deterministically into dims dimensions.
type fakeEmbedder struct {
	mu      sync.Mutex
	dims    int
	calls   int
	batches [][]string
	failOn  func(texts []string) error
	short   bool
}

func (e *fakeEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	for i, r := range text {
		v[i%e.dims] += float32(r%17) + 1
	}
	return v
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.batches = append(e.batches, texts)
	if e.failOn != nil {
		if err := e.failOn(texts); err != nil {
			return nil, err
		}
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
		if e.short {
			out[i] = out[i][:e.dims-1]
		}
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int { return e.dims }
func (e *fakeEmbedder) ModelName() string { return "fake-embed" }
func (e *fakeEmbedder) Ping(context.Context) error { return nil }
func (e *fakeEmbedder) Close() error { return nil }

// fakeLLM records the messages it is given.
type fakeLLM struct {
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	calls    int
}

func (l *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.calls++
	l.messages = messages
	l.opts = opts
	return l.reply, l.err
}

func (l *fakeLLM) ModelName() string { return "fake-llm" }
func (l *fakeLLM) Ping(context.Context) error { return nil }
func (l *fakeLLM) Close() error { return nil }

// fakePrompts serves fixed templates.
type fakePrompts struct{}

func (fakePrompts) Load(name string) (string, error) {
	switch name {
	case driven.PromptAnswerSystem:
		return "SYSTEM", nil
	case driven.PromptAnswerUser:
		return "Context:\n%s\n\nQuestion: %s", nil
	}
	return "", domain.ErrNotFound
}

func (fakePrompts) Reload() {}

// failingTracker wraps a tracker and fails selected operations.
type failingTracker struct {
	driven.IngestionTracker
	failIsProcessed bool
	failRegister    bool
}

func (t *failingTracker) IsProcessed(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	if t.failIsProcessed {
		return false, fmt.Errorf("%w: database is locked", domain.ErrStorage)
	}
	return t.IngestionTracker.IsProcessed(ctx, fp)
}

func (t *failingTracker) Register(ctx context.Context, rec domain.TrackerRecord) error {
	if t.failRegister {
		return fmt.Errorf("%w: database is locked", domain.ErrStorage)
	}
	return t.IngestionTracker.Register(ctx, rec)
}

// failingCache wraps a staging cache and fails writes or consumes.
type failingCache struct {
	driven.StagingCache
	failWrite   bool
	failConsume bool
}

func (c *failingCache) Write(ctx context.Context, fp domain.Fingerprint, docs []domain.StagedDocument) (string, error) {
	if c.failWrite {
		return "", fmt.Errorf("%w: read-only file system", domain.ErrStorage)
	}
	return c.StagingCache.Write(ctx, fp, docs)
}

func (c *failingCache) Consume(ctx context.Context, path string) error {
	if c.failConsume {
		return fmt.Errorf("%w: permission denied", domain.ErrStorage)
	}
	return c.StagingCache.Consume(ctx, path)
}

// flakyStore fails the first failUpserts upserts.
type flakyStore struct {
	driven.VectorStore
	failUpserts int
	upserts     int
	existsErr   error
}

func (s *flakyStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.VectorStore.CollectionExists(ctx, name)
}

func (s *flakyStore) Upsert(ctx context.Context, name string, chunks []domain.Chunk) error {
	s.upserts++
	if s.upserts <= s.failUpserts {
		return fmt.Errorf("%w: connection reset", domain.ErrVectorStoreUnavailable)
	}
	return s.VectorStore.Upsert(ctx, name, chunks)
}

// writeFiles creates files under dir and returns dir.
func writeFiles(dir string, files map[string]string) string {
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			panic(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			panic(err)
		}
	}
	return dir
}
