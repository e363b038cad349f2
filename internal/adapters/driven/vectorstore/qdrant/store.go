// Package qdrant is a REST client for a Qdrant vector database.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Payload keys reserved for chunk fields. All other keys hold metadata.
const (
	payloadText       = "text"
	payloadDocumentID = "document_id"
	payloadChunkID    = "chunk_id"
	payloadPosition   = "chunk_position"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 30 * time.Second

// Config holds connection settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Store implements driven.VectorStore over the Qdrant HTTP API.
type Store struct {
	api *httpjson.Client
}

var _ driven.VectorStore = (*Store)(nil)

// New creates a Qdrant store.
func New(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = domain.DefaultQdrantURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("api-key", cfg.APIKey)
	}
	return &Store{api: httpjson.New(cfg.URL, cfg.Timeout, header)}
}

// CollectionExists asks Qdrant directly rather than inferring from errors.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	var resp struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodGet, collectionPath(name)+"/exists", nil, &resp); err != nil {
		return false, err
	}
	return resp.Result.Exists, nil
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// CollectionInfo returns the collection's vector configuration.
func (s *Store) CollectionInfo(ctx context.Context, name string) (*domain.Collection, error) {
	var resp collectionInfo
	if err := s.do(ctx, http.MethodGet, collectionPath(name), nil, &resp); err != nil {
		return nil, s.notFound(err, name)
	}
	v := resp.Result.Config.Params.Vectors
	return &domain.Collection{
		Name:       name,
		Dimensions: v.Size,
		Metric:     domain.DistanceMetric(strings.ToLower(v.Distance)),
	}, nil
}

// CreateCollection creates a collection with cosine distance.
func (s *Store) CreateCollection(ctx context.Context, c domain.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     c.Dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, collectionPath(c.Name), body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", c.Name, err)
	}
	return nil
}

// DeleteCollection drops the collection and all its points.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := s.do(ctx, http.MethodDelete, collectionPath(name), nil, nil); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// Upsert writes chunks as points and waits for the write to be applied.
func (s *Store) Upsert(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	info, err := s.CollectionInfo(ctx, collection)
	if err != nil {
		return err
	}

	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if len(c.Embedding) != info.Dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection %s expects %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), collection, info.Dimensions)
		}
		points[i] = map[string]any{
			"id":      c.ID,
			"vector":  c.Embedding,
			"payload": toPayload(c),
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, collectionPath(collection)+"/points?wait=true", body, nil); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns the closest points with their payloads.
func (s *Store) Search(
	ctx context.Context, collection string, query []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}
	body := map[string]any{
		"vector":       query,
		"limit":        limit,
		"with_payload": true,
	}
	if opts.Source != "" {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": domain.MetaSource, "match": map[string]any{"value": opts.Source}},
			},
		}
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, collectionPath(collection)+"/points/search", body, &resp); err != nil {
		return nil, s.notFound(err, collection)
	}

	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Chunk: fromPayload(r.Payload), Score: r.Score})
	}
	return results, nil
}

// Count returns the exact number of points in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, collectionPath(collection)+"/points/count",
		map[string]any{"exact": true}, &resp); err != nil {
		return 0, s.notFound(err, collection)
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func collectionPath(name string) string {
	return "/collections/" + url.PathEscape(name)
}

func isNotFound(err error) bool {
	var se *httpjson.StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func (s *Store) notFound(err error, name string) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return err
}

// do keeps the StatusError in the chain so isNotFound still sees it.
func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	err := s.api.Do(ctx, method, path, body, out)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: qdrant %s %s: %w", domain.ErrVectorStoreUnavailable, method, path, err)
	}
}

func toPayload(c *domain.Chunk) map[string]any {
	p := make(map[string]any, len(c.Metadata)+4)
	for k, v := range c.Metadata {
		p[k] = v
	}
	p[payloadText] = c.Content
	p[payloadDocumentID] = c.DocumentID
	p[payloadChunkID] = c.ID
	p[payloadPosition] = c.Position
	return p
}

func fromPayload(p map[string]any) domain.Chunk {
	c := domain.Chunk{Metadata: make(map[string]any, len(p))}
	for k, v := range p {
		switch k {
		case payloadText:
			c.Content, _ = v.(string)
		case payloadDocumentID:
			c.DocumentID, _ = v.(string)
		case payloadChunkID:
			c.ID, _ = v.(string)
		case payloadPosition:
			if f, ok := v.(float64); ok {
				c.Position = int(f)
			}
		default:
			c.Metadata[k] = v
		}
	}
	return c
}
