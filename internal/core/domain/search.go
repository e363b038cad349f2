package domain

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Source filters results to one source file name.
	Source string
}

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity.
	Score float64
}

// Answer is a generated response with the context it was grounded on.
type Answer struct {
	// Question is the user question.
	Question string

	// Text is the completion.
	Text string

	// Sources are the chunks passed to the model as context.
	Sources []SearchResult
}
