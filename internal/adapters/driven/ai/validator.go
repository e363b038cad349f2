package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// DefaultPingTimeout bounds a single reachability probe.
const DefaultPingTimeout = 10 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// probe pings svc, closing it when unreachable.
func probe(ctx context.Context, svc pinger, timeout time.Duration, provider domain.AIProvider) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrConfig, provider, err)
	}
	return nil
}

// CreateAndValidateEmbeddingService builds the embedding service, checks
// it answers and throttles it to rps requests per second.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings, rps float64,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}
	if err := probe(ctx, svc, DefaultPingTimeout, settings.Provider); err != nil {
		return nil, err
	}
	return ratelimit.Wrap(svc, rps), nil
}

// CreateAndValidateLLMService builds the completion service and checks it answers.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}
	if err := probe(ctx, svc, DefaultPingTimeout, settings.Provider); err != nil {
		return nil, err
	}
	return svc, nil
}

// ValidateEmbeddingConfig reports whether settings describe a reachable
// embedding provider.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	return NewConfigValidator().ValidateEmbedding(settings)
}

// ValidateLLMConfig reports whether settings describe a reachable
// completion provider.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	return NewConfigValidator().ValidateLLM(settings)
}

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator probes providers on behalf of the settings service.
// Each check builds a throwaway client and closes it afterwards.
type ConfigValidator struct {
	Timeout time.Duration
}

// NewConfigValidator returns a validator using DefaultPingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{Timeout: DefaultPingTimeout}
}

func (v *ConfigValidator) timeout() time.Duration {
	if v.Timeout <= 0 {
		return DefaultPingTimeout
	}
	return v.Timeout
}

// ValidateEmbedding builds the embedding client for cfg and pings it.
func (v *ConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(cfg)
	if err != nil {
		return err
	}
	if err := probe(context.Background(), svc, v.timeout(), cfg.Provider); err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLM builds the completion client for cfg and pings it.
func (v *ConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return err
	}
	if err := probe(context.Background(), svc, v.timeout(), cfg.Provider); err != nil {
		return err
	}
	return svc.Close()
}
