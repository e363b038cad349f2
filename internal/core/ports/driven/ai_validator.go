package driven

import "github.com/custodia-labs/lexrag/internal/core/domain"

// AIConfigValidator checks provider settings before they are relied on,
// typically by dialling the provider once.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
