package driving

import "github.com/custodia-labs/lexrag/internal/core/domain"

// SettingsService reads and edits the typed application settings.
type SettingsService interface {
	// Get resolves the effective settings: defaults, then config.toml,
	// then LEXRAG_* overrides.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	// Set parses value for the dotted key and saves it. Unknown keys and
	// unparsable values are ErrInvalidInput.
	Set(key, value string) error
	Keys() []string

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the settings without network access.
	Validate() error

	// ValidateEmbeddingConfig and ValidateLLMConfig dial the configured
	// provider.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
