// Package file provides a filesystem-backed staging cache.
//
// Each artifact is <dir>/<fingerprint>.json holding a JSON array of
// staged documents. An artifact on disk is pending; consuming it
// deletes the file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// ArtifactExt is the extension of staged artifacts.
const ArtifactExt = ".json"

// Ensure Cache implements the interface.
var _ driven.StagingCache = (*Cache)(nil)

// Cache stores staged artifacts as JSON files in one directory.
type Cache struct {
	dir string
}

// New creates a cache rooted at dir. The directory is created on first write.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// PathFor returns the artifact path for a fingerprint.
func (c *Cache) PathFor(fp domain.Fingerprint) string {
	return filepath.Join(c.dir, fp.String()+ArtifactExt)
}

// Write stores docs atomically: the JSON is written to a temp file in
// the same directory, synced, then renamed over the final name.
func (c *Cache) Write(_ context.Context, fp domain.Fingerprint, docs []domain.StagedDocument) (string, error) {
	if !fp.IsValid() {
		return "", fmt.Errorf("%w: fingerprint %q", domain.ErrInvalidInput, fp)
	}
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return "", fmt.Errorf("staged document %d: %w", i, err)
		}
	}

	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return "", fmt.Errorf("%w: create cache dir: %v", domain.ErrStorage, err)
	}

	data, err := json.MarshalIndent(docs, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact: %w", err)
	}

	path := c.PathFor(fp)
	tmp, err := os.CreateTemp(c.dir, "."+fp.String()+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp artifact: %v", domain.ErrStorage, err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: write artifact: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: rename artifact: %v", domain.ErrStorage, err)
	}

	return path, nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ListPending returns all artifact paths, sorted. A missing directory
// means nothing is pending.
func (c *Cache) ListPending(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list cache: %v", domain.ErrStorage, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ArtifactExt {
			continue
		}
		paths = append(paths, filepath.Join(c.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read decodes an artifact and validates every envelope. The artifact
// must hold at least one document and every document's fingerprint must
// match the artifact name.
func (c *Cache) Read(_ context.Context, path string) ([]domain.StagedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", filepath.Base(path), err)
	}

	var docs []domain.StagedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode artifact %s: %v", domain.ErrInvalidInput, filepath.Base(path), err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: artifact %s is empty", domain.ErrInvalidInput, filepath.Base(path))
	}

	want := domain.Fingerprint(strings.TrimSuffix(filepath.Base(path), ArtifactExt))
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return nil, fmt.Errorf("artifact %s document %d: %w", filepath.Base(path), i, err)
		}
		if want.IsValid() && docs[i].Metadata.Fingerprint != want {
			return nil, fmt.Errorf("%w: artifact %s document %d has file_hash %s",
				domain.ErrInvalidInput, filepath.Base(path), i, docs[i].Metadata.Fingerprint.Short())
		}
	}
	return docs, nil
}

// Consume deletes an artifact.
func (c *Cache) Consume(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: consume artifact: %v", domain.ErrStorage, err)
	}
	return nil
}

// Clear deletes the cache directory and everything in it.
func (c *Cache) Clear(_ context.Context) error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("%w: clear cache: %v", domain.ErrStorage, err)
	}
	return nil
}
