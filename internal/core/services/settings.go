package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings.
const (
	keyDataDir   = "paths.data_dir"
	keySourceDir = "paths.source_dir"
	keyCacheDir  = "paths.cache_dir"
	keyLogFile   = "paths.log_file"
	keyLockFile  = "paths.lock_file"

	keyIngestExtensions   = "ingest.extensions"
	keyIngestConverter    = "ingest.converter"
	keyIngestConverterURL = "ingest.converter_url"
	keyIngestParseParams  = "ingest.parse_params"
	keyIngestRulesFile    = "ingest.rules_file"
	keyIngestPageRange    = "ingest.page_range"

	keyIndexBatchSize     = "index.batch_size"
	keyIndexMaxChunkChars = "index.max_chunk_chars"
	keyIndexChunkOverlap  = "index.chunk_overlap"
	keyIndexRPS           = "index.requests_per_second"

	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"

	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"

	keyVectorBackend    = "vector.backend"
	keyVectorURL        = "vector.url"
	keyVectorAPIKey     = "vector.api_key"
	keyVectorCollection = "vector.collection"

	keyChatTopK          = "chat.top_k"
	keyChatContextChunks = "chat.context_chunks"

	keyMetricsTextfile = "metrics.textfile"
)

const defaultOllamaURL = "http://localhost:11434"

// valueKind tells Set how to parse a value typed on the command line.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindNonNegativeInt
	kindFloat
	kindList
	kindProvider
	kindConverter
	kindBackend
)

var settingKinds = map[string]valueKind{
	keyDataDir:   kindString,
	keySourceDir: kindString,
	keyCacheDir:  kindString,
	keyLogFile:   kindString,
	keyLockFile:  kindString,

	keyIngestExtensions:   kindList,
	keyIngestConverter:    kindConverter,
	keyIngestConverterURL: kindString,
	keyIngestParseParams:  kindString,
	keyIngestRulesFile:    kindString,
	keyIngestPageRange:    kindString,

	keyIndexBatchSize:     kindInt,
	keyIndexMaxChunkChars: kindInt,
	keyIndexChunkOverlap:  kindNonNegativeInt,
	keyIndexRPS:           kindFloat,

	keyEmbedProvider:   kindProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDimensions: kindInt,

	keyLLMProvider:    kindProvider,
	keyLLMModel:       kindString,
	keyLLMBaseURL:     kindString,
	keyLLMAPIKey:      kindString,
	keyLLMTemperature: kindFloat,
	keyLLMMaxTokens:   kindInt,

	keyVectorBackend:    kindBackend,
	keyVectorURL:        kindString,
	keyVectorAPIKey:     kindString,
	keyVectorCollection: kindString,

	keyChatTopK:          kindInt,
	keyChatContextChunks: kindInt,

	keyMetricsTextfile: kindString,
}

// SettingsService manages application settings.
// It builds one AppSettings value from defaults, the config store and
// provider API keys found in the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	dataDir     string
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. dataDir roots the
// default paths unless paths.data_dir is configured.
func NewSettingsService(
	configStore driven.ConfigStore,
	aiValidator driven.AIConfigValidator,
	dataDir string,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		dataDir:     dataDir,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	dataDir := s.getString(keyDataDir, s.dataDir)
	d := domain.DefaultAppSettings(dataDir)

	settings := &domain.AppSettings{
		Paths: domain.PathSettings{
			DataDir:   dataDir,
			SourceDir: s.getString(keySourceDir, d.Paths.SourceDir),
			CacheDir:  s.getString(keyCacheDir, d.Paths.CacheDir),
			LogFile:   s.getString(keyLogFile, d.Paths.LogFile),
			LockFile:  s.getString(keyLockFile, d.Paths.LockFile),
		},
		Ingest: domain.IngestSettings{
			Extensions:   s.getStringSlice(keyIngestExtensions, d.Ingest.Extensions),
			Converter:    domain.ConverterKind(s.getString(keyIngestConverter, string(d.Ingest.Converter))),
			ConverterURL: s.getString(keyIngestConverterURL, d.Ingest.ConverterURL),
			ParseParams:  s.getString(keyIngestParseParams, d.Ingest.ParseParams),
			RulesFile:    s.getString(keyIngestRulesFile, d.Ingest.RulesFile),
			PageRange:    s.getString(keyIngestPageRange, d.Ingest.PageRange),
		},
		Index: domain.IndexSettings{
			BatchSize:         s.getInt(keyIndexBatchSize, d.Index.BatchSize),
			MaxChunkChars:     s.getInt(keyIndexMaxChunkChars, d.Index.MaxChunkChars),
			ChunkOverlap:      s.getInt(keyIndexChunkOverlap, d.Index.ChunkOverlap),
			RequestsPerSecond: s.getFloat(keyIndexRPS, d.Index.RequestsPerSecond),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:    s.getString(keyEmbedBaseURL, d.Embedding.BaseURL),
			APIKey:     s.getString(keyEmbedAPIKey, ""),
			Dimensions: s.getInt(keyEmbedDimensions, d.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:     s.getString(keyLLMBaseURL, d.LLM.BaseURL),
			APIKey:      s.getString(keyLLMAPIKey, ""),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:    domain.VectorBackend(s.getString(keyVectorBackend, string(d.VectorStore.Backend))),
			URL:        s.getString(keyVectorURL, d.VectorStore.URL),
			APIKey:     s.getString(keyVectorAPIKey, ""),
			Collection: s.getString(keyVectorCollection, d.VectorStore.Collection),
		},
		Chat: domain.ChatSettings{
			TopK:          s.getInt(keyChatTopK, d.Chat.TopK),
			ContextChunks: s.getInt(keyChatContextChunks, d.Chat.ContextChunks),
		},
		Metrics: domain.MetricsSettings{
			Textfile: s.getString(keyMetricsTextfile, d.Metrics.Textfile),
		},
	}

	// The provider's conventional environment variable fills a missing key.
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{keySourceDir, settings.Paths.SourceDir},
		{keyCacheDir, settings.Paths.CacheDir},
		{keyLogFile, settings.Paths.LogFile},
		{keyLockFile, settings.Paths.LockFile},
		{keyIngestExtensions, settings.Ingest.Extensions},
		{keyIngestConverter, string(settings.Ingest.Converter)},
		{keyIngestConverterURL, settings.Ingest.ConverterURL},
		{keyIngestParseParams, settings.Ingest.ParseParams},
		{keyIngestRulesFile, settings.Ingest.RulesFile},
		{keyIngestPageRange, settings.Ingest.PageRange},
		{keyIndexBatchSize, settings.Index.BatchSize},
		{keyIndexMaxChunkChars, settings.Index.MaxChunkChars},
		{keyIndexChunkOverlap, settings.Index.ChunkOverlap},
		{keyIndexRPS, settings.Index.RequestsPerSecond},
		{keyEmbedProvider, string(settings.Embedding.Provider)},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, string(settings.LLM.Provider)},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyVectorBackend, string(settings.VectorStore.Backend)},
		{keyVectorURL, settings.VectorStore.URL},
		{keyVectorCollection, settings.VectorStore.Collection},
		{keyChatTopK, settings.Chat.TopK},
		{keyChatContextChunks, settings.Chat.ContextChunks},
		{keyMetricsTextfile, settings.Metrics.Textfile},
	}
	if settings.Paths.DataDir != "" && settings.Paths.DataDir != s.dataDir {
		pairs = append(pairs, struct {
			key   string
			value any
		}{keyDataDir, settings.Paths.DataDir})
	}

	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}

	// Only persist API keys if set.
	secrets := map[string]string{
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyVectorAPIKey: settings.VectorStore.APIKey,
	}
	for _, key := range []string{keyEmbedAPIKey, keyLLMAPIKey, keyVectorAPIKey} {
		if secrets[key] == "" {
			continue
		}
		if err := s.configStore.Set(key, secrets[key]); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt, kindNonNegativeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		if n < 0 || (n == 0 && kind == kindInt) {
			return fmt.Errorf("%w: %s must be positive: %d", domain.ErrInvalidInput, key, n)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number: %q", domain.ErrInvalidInput, key, value)
		}
		parsed = f
	case kindList:
		parsed = splitList(value)
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	case kindConverter:
		if !domain.ConverterKind(value).IsValid() {
			return fmt.Errorf("%w: invalid converter %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	case kindBackend:
		if !domain.VectorBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid vector backend %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	supported := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (set %s)",
			domain.ErrInvalidInput, provider, provider.APIKeyEnv())
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else if m, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = m
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// A model change changes the collection's vector size.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (set %s)",
			domain.ErrInvalidInput, provider, provider.APIKeyEnv())
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else if m, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = m
	}

	switch {
	case provider.IsLocal():
		if settings.LLM.BaseURL == "" || settings.LLM.BaseURL == domain.DefaultGroqBaseURL {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	case provider == domain.AIProviderGroq:
		settings.LLM.BaseURL = domain.DefaultGroqBaseURL
	default:
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings(s.dataDir)
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	name := provider.APIKeyEnv()
	if name == "" {
		return ""
	}
	return s.getenv(name)
}

// override returns the LEXRAG_<KEY> environment value for key, if set.
func (s *SettingsService) override(key string) (string, bool) {
	name := "LEXRAG_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	val := strings.TrimSpace(s.getenv(name))
	return val, val != ""
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.override(key); ok {
		return val
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val, ok := s.override(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if val, ok := s.override(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if val, ok := s.override(key); ok {
		return splitList(val)
	}
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, string(defaultVal)))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// splitList parses a comma separated list, dropping blanks.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
