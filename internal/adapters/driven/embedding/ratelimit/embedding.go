// Package ratelimit throttles calls to an embedding service.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService wraps another service and waits on a token bucket
// before each Embed or EmbedBatch call.
type EmbeddingService struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap limits next to rps requests per second. A non-positive rps
// returns next unchanged.
func Wrap(next driven.EmbeddingService, rps float64) driven.EmbeddingService {
	if rps <= 0 {
		return next
	}
	return &EmbeddingService{
		EmbeddingService: next,
		limiter:          rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Embed waits for a token, then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.EmbeddingService.Embed(ctx, text)
}

// EmbedBatch waits for a token, then embeds the batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.EmbeddingService.EmbedBatch(ctx, texts)
}
