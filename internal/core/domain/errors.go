package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrStorage indicates the tracker store, staging directory or another
	// local persistence layer failed. Runs abort on storage errors.
	ErrStorage = errors.New("storage failure")

	// ErrConfig indicates required configuration is missing or invalid.
	ErrConfig = errors.New("configuration error")

	// ErrInstanceLocked indicates another pipeline process holds the lock.
	ErrInstanceLocked = errors.New("another instance is running")

	// ErrParse indicates the document converter could not produce text.
	ErrParse = errors.New("document conversion failed")

	// ErrLLMUnavailable indicates the completion service is not configured
	// or not reachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or not reachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not reachable.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrCollectionNotFound indicates the vector collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch indicates an embedding vector does not match the
	// collection's configured size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNothingStaged indicates a full rebuild was asked for with no
	// staged artifacts while the collection still holds points.
	ErrNothingStaged = errors.New("nothing staged to rebuild from")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
