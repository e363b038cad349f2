package driven

import "context"

// EmbeddingService turns passage and query text into vectors. Backends are
// Ollama (bge-m3, nomic-embed-text) and OpenAI-compatible endpoints.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is fixed by the model and must equal the collection's.
	Dimensions() int
	ModelName() string

	// Ping makes the cheapest request that proves the model is usable.
	Ping(ctx context.Context) error
	Close() error
}
