package domain

import (
	"fmt"
	"strings"
)

// AIProvider names a backend for embeddings, completions or both.
type AIProvider string

const (
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI also covers OpenAI-compatible endpoints reached
	// through BaseURL.
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderGroq      AIProvider = "groq"
	AIProviderAnthropic AIProvider = "anthropic"
)

type providerInfo struct {
	label  string
	keyEnv string // empty for providers that need no key
}

var providers = map[AIProvider]providerInfo{
	AIProviderOllama:    {label: "Ollama (local)"},
	AIProviderOpenAI:    {label: "OpenAI (cloud)", keyEnv: "OPENAI_API_KEY"},
	AIProviderGroq:      {label: "Groq (cloud)", keyEnv: "GROQ_API_KEY"},
	AIProviderAnthropic: {label: "Anthropic (cloud)", keyEnv: "ANTHROPIC_API_KEY"},
}

func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey is true for the cloud providers.
func (p AIProvider) RequiresAPIKey() bool { return providers[p].keyEnv != "" }

func (p AIProvider) IsLocal() bool { return p == AIProviderOllama }

func (p AIProvider) String() string { return string(p) }

// Description is the label shown in the settings wizard.
func (p AIProvider) Description() string {
	if info, ok := providers[p]; ok {
		return info.label
	}
	return "Unknown"
}

// APIKeyEnv names the conventional environment variable for the
// provider's key, or "" when it needs none.
func (p AIProvider) APIKeyEnv() string { return providers[p].keyEnv }

// ConverterKind selects the document converter backend.
type ConverterKind string

// Available converters.
const (
	// ConverterPdftotext shells out to poppler's pdftotext.
	ConverterPdftotext ConverterKind = "pdftotext"

	// ConverterDocling calls a docling-serve HTTP endpoint.
	ConverterDocling ConverterKind = "docling"
)

// IsValid returns true if the converter is recognised.
func (k ConverterKind) IsValid() bool {
	return k == ConverterPdftotext || k == ConverterDocling
}

// VectorBackend selects the vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite stores vectors in a local SQLite file.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendQdrant stores vectors in a Qdrant server.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendSQLite || b == VectorBackendQdrant
}

// PathSettings locates every file the pipeline reads or writes.
type PathSettings struct {
	// DataDir holds the tracker database, vector store, log and lock.
	DataDir string

	// SourceDir is scanned for input documents.
	SourceDir string

	// CacheDir holds staged artifacts.
	CacheDir string

	// LogFile is the run log.
	LogFile string

	// LockFile is the singleton lock.
	LockFile string
}

// IngestSettings configures the ingestion orchestrator.
type IngestSettings struct {
	// Extensions are the accepted file extensions, matched case-insensitively.
	Extensions []string

	// Converter selects the document converter.
	Converter ConverterKind

	// ConverterURL is the docling-serve endpoint.
	ConverterURL string

	// ParseParams is the label recorded in the tracker.
	ParseParams string

	// RulesFile optionally adds cleaning rules from YAML.
	RulesFile string

	// PageRange limits conversion to a page span ("first-last"). Empty converts all.
	PageRange string
}

// IndexSettings configures the index builder.
type IndexSettings struct {
	// BatchSize bounds the number of chunks embedded and upserted together.
	BatchSize int

	// MaxChunkChars caps the size of a chunk; larger sections are split.
	MaxChunkChars int

	// ChunkOverlap is the overlap in characters between split pieces.
	ChunkOverlap int

	// RequestsPerSecond rate-limits embedding calls. Zero disables limiting.
	RequestsPerSecond float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size the model produces.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOllama && e.Provider != AIProviderOpenAI {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return e.Model != "" && e.Dimensions > 0
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature controls randomness.
	Temperature float64

	// MaxTokens caps the completion length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return l.Model != ""
}

// VectorStoreSettings configures the vector store.
type VectorStoreSettings struct {
	// Backend selects the implementation.
	Backend VectorBackend

	// URL is the Qdrant endpoint.
	URL string

	// APIKey authenticates to Qdrant.
	APIKey string

	// Collection is the collection name.
	Collection string
}

// ChatSettings configures retrieval and answering.
type ChatSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// ContextChunks is how many of the retrieved chunks go to the model.
	ContextChunks int
}

// MetricsSettings configures metrics export.
type MetricsSettings struct {
	// Textfile is written in Prometheus text format after each run.
	// Empty disables export.
	Textfile string
}

// AppSettings holds all application settings.
// One value is built at startup and passed to every component.
type AppSettings struct {
	Paths       PathSettings
	Ingest      IngestSettings
	Index       IndexSettings
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Chat        ChatSettings
	Metrics     MetricsSettings
}

// Default values.
const (
	DefaultCollectionName = "solar_ppa_collection"
	DefaultParseParams    = "bilingual_cleaned"
	DefaultBatchSize      = 20
	DefaultMaxChunkChars  = 2000
	DefaultChunkOverlap   = 200
	DefaultTopK           = 5
	DefaultContextChunks  = 3
	DefaultTemperature    = 0.1
	DefaultMaxTokens      = 500
	DefaultDoclingURL     = "http://localhost:5001"
	DefaultQdrantURL      = "http://localhost:6333"
	DefaultGroqBaseURL    = "https://api.groq.com/openai/v1"
)

// DefaultAppSettings returns settings with sensible defaults rooted at dataDir.
func DefaultAppSettings(dataDir string) AppSettings {
	return AppSettings{
		Paths: PathSettings{
			DataDir:   dataDir,
			SourceDir: "data",
			CacheDir:  dataDir + "/cache",
			LogFile:   dataDir + "/ingestion.log",
			LockFile:  dataDir + "/lexrag.pid",
		},
		Ingest: IngestSettings{
			Extensions:   []string{".pdf"},
			Converter:    ConverterPdftotext,
			ConverterURL: DefaultDoclingURL,
			ParseParams:  DefaultParseParams,
		},
		Index: IndexSettings{
			BatchSize:     DefaultBatchSize,
			MaxChunkChars: DefaultMaxChunkChars,
			ChunkOverlap:  DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "bge-m3",
			BaseURL:    "http://localhost:11434",
			Dimensions: 1024,
		},
		LLM: LLMSettings{
			Provider:    AIProviderGroq,
			Model:       "llama-3.1-8b-instant",
			BaseURL:     DefaultGroqBaseURL,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendSQLite,
			URL:        DefaultQdrantURL,
			Collection: DefaultCollectionName,
		},
		Chat: ChatSettings{
			TopK:          DefaultTopK,
			ContextChunks: DefaultContextChunks,
		},
	}
}

// ParserID returns the identifier recorded in staged metadata for the
// configured converter.
func (s IngestSettings) ParserID() string {
	return string(s.Converter) + "_production_v1"
}

// ParsedPageRange parses PageRange. Returns nil when unset.
func (s IngestSettings) ParsedPageRange() (*PageRange, error) {
	if strings.TrimSpace(s.PageRange) == "" {
		return nil, nil
	}
	var r PageRange
	if _, err := fmt.Sscanf(s.PageRange, "%d-%d", &r.First, &r.Last); err != nil {
		return nil, fmt.Errorf("%w: page range %q: %v", ErrConfig, s.PageRange, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &r, nil
}

// Validate checks the settings needed by every command.
func (s AppSettings) Validate() error {
	if s.Paths.DataDir == "" {
		return fmt.Errorf("%w: data directory is not set", ErrConfig)
	}
	if !s.Ingest.Converter.IsValid() {
		return fmt.Errorf("%w: unknown converter %q", ErrConfig, s.Ingest.Converter)
	}
	if !s.VectorStore.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", ErrConfig, s.VectorStore.Backend)
	}
	if s.VectorStore.Collection == "" {
		return fmt.Errorf("%w: collection name is not set", ErrConfig)
	}
	if s.Index.BatchSize <= 0 {
		return fmt.Errorf("%w: index batch size must be positive", ErrConfig)
	}
	if s.Chat.TopK <= 0 || s.Chat.ContextChunks <= 0 {
		return fmt.Errorf("%w: chat top_k and context_chunks must be positive", ErrConfig)
	}
	if _, err := s.Ingest.ParsedPageRange(); err != nil {
		return err
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGroq,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "bge-m3",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderGroq:      "llama-3.1-8b-instant",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"bge-m3":            1024,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfig derives the chunking pipeline from the index settings:
// markdown sections first, then a size cap on each section.
func (s IndexSettings) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"sections", "splitter"},
		ProcessorConfigs: map[string]map[string]any{
			"splitter": {
				"max_chars": s.MaxChunkChars,
				"overlap":   s.ChunkOverlap,
			},
		},
	}
}
