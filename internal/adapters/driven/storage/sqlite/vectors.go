package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore with exact cosine search over
// embeddings stored as BLOBs. It suits the small corpora a single
// contract library produces.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// CollectionExists reports whether the collection row exists.
func (v *vectorStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := v.store.db.QueryRowContext(ctx, "SELECT 1 FROM collections WHERE name = ?", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("query collection", err)
	}
	return true, nil
}

// CollectionInfo returns the collection definition.
func (v *vectorStore) CollectionInfo(ctx context.Context, name string) (*domain.Collection, error) {
	var c domain.Collection
	var metric string
	err := v.store.db.QueryRowContext(ctx,
		"SELECT name, dimensions, metric FROM collections WHERE name = ?", name).
		Scan(&c.Name, &c.Dimensions, &metric)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, storageErr("get collection", err)
	}
	c.Metric = domain.DistanceMetric(metric)
	return &c, nil
}

// CreateCollection inserts the collection row.
func (v *vectorStore) CreateCollection(ctx context.Context, c domain.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := v.store.db.ExecContext(ctx,
		"INSERT INTO collections (name, dimensions, metric) VALUES (?, ?, ?)",
		c.Name, c.Dimensions, string(c.Metric))
	return storageErr("create collection "+c.Name, err)
}

// DeleteCollection removes the collection; points cascade.
func (v *vectorStore) DeleteCollection(ctx context.Context, name string) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin delete collection", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM points WHERE collection = ?", name); err != nil {
		return storageErr("delete points", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name); err != nil {
		return storageErr("delete collection", err)
	}
	return storageErr("commit delete collection", tx.Commit())
}

// Upsert writes all chunks in one transaction.
func (v *vectorStore) Upsert(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	info, err := v.CollectionInfo(ctx, collection)
	if err != nil {
		return err
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin upsert", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (collection, id, document_id, content, position, metadata, source, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			position = excluded.position,
			metadata = excluded.metadata,
			source = excluded.source,
			embedding = excluded.embedding
	`)
	if err != nil {
		return storageErr("prepare upsert", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if len(c.Embedding) != info.Dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection %s expects %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), collection, info.Dimensions)
		}
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for chunk %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, c.ID, c.DocumentID, c.Content, c.Position,
			string(meta), c.Source(), float32SliceToBytes(c.Embedding)); err != nil {
			return storageErr("upsert chunk "+c.ID, err)
		}
	}

	return storageErr("commit upsert", tx.Commit())
}

// Search scores every point in the collection and returns the best k.
func (v *vectorStore) Search(
	ctx context.Context, collection string, query []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	info, err := v.CollectionInfo(ctx, collection)
	if err != nil {
		return nil, err
	}
	if len(query) != info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection expects %d",
			domain.ErrDimensionMismatch, len(query), info.Dimensions)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	q := "SELECT id, document_id, content, position, metadata, embedding FROM points WHERE collection = ?"
	args := []any{collection}
	if opts.Source != "" {
		q += " AND source = ?"
		args = append(args, opts.Source)
	}

	rows, err := v.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storageErr("query points", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var c domain.Chunk
		var meta string
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &c.Position, &meta, &blob); err != nil {
			return nil, storageErr("scan point", err)
		}
		if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for chunk %s: %w", c.ID, err)
		}
		results = append(results, domain.SearchResult{
			Chunk: c,
			Score: cosine(query, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate points", err)
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
func (v *vectorStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM points WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, storageErr("count points", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the connection.
func (v *vectorStore) Close() error {
	return nil
}

// cosine returns the cosine similarity of a and b, 0 for zero vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
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
