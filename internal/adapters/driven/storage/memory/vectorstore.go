package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type collection struct {
	info   domain.Collection
	points map[string]domain.Chunk
	order  []string
}

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]*collection),
	}
}

// CollectionExists reports whether the collection exists.
func (v *VectorStore) CollectionExists(_ context.Context, name string) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.collections[name]
	return ok, nil
}

// CollectionInfo returns the collection definition.
func (v *VectorStore) CollectionInfo(_ context.Context, name string) (*domain.Collection, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	info := c.info
	return &info, nil
}

// CreateCollection creates an empty collection.
func (v *VectorStore) CreateCollection(_ context.Context, c domain.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.collections[c.Name]; ok {
		return fmt.Errorf("collection %s already exists", c.Name)
	}
	v.collections[c.Name] = &collection{info: c, points: make(map[string]domain.Chunk)}
	return nil
}

// DeleteCollection removes the collection.
func (v *VectorStore) DeleteCollection(_ context.Context, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.collections, name)
	return nil
}

// Upsert writes chunks. Either all chunks are written or none.
func (v *VectorStore) Upsert(_ context.Context, name string, chunks []domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	for _, ch := range chunks {
		if len(ch.Embedding) != c.info.Dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection %s expects %d",
				domain.ErrDimensionMismatch, ch.ID, len(ch.Embedding), name, c.info.Dimensions)
		}
	}
	for _, ch := range chunks {
		if _, exists := c.points[ch.ID]; !exists {
			c.order = append(c.order, ch.ID)
		}
		c.points[ch.ID] = ch
	}
	return nil
}

// Search returns the nearest chunks by cosine similarity.
func (v *VectorStore) Search(
	_ context.Context, name string, query []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if len(query) != c.info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection expects %d",
			domain.ErrDimensionMismatch, len(query), c.info.Dimensions)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	results := make([]domain.SearchResult, 0, len(c.points))
	for _, id := range c.order {
		ch := c.points[id]
		if opts.Source != "" && ch.Source() != opts.Source {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: ch, Score: cosine(query, ch.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of points in the collection.
func (v *VectorStore) Count(_ context.Context, name string) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.collections[name]
	if !ok {
		return 0, nil
	}
	return len(c.points), nil
}

// Close releases resources.
func (v *VectorStore) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
