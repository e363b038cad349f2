package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// chunkNamespace scopes chunk IDs generated by ChunkID.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lexrag:chunk"))

// Document is a staged document prepared for chunking.
// The index builder derives one Document per StagedDocument.
type Document struct {
	// ID is the content fingerprint of the source file, suffixed with
	// "#<index>" for every document after the first in an artifact.
	ID string

	// Title is the human-readable title, usually the source file name.
	Title string

	// Content is the cleaned text before chunking.
	Content string

	// Metadata is inherited by every chunk produced from this document.
	Metadata map[string]any
}

// NewDocument builds a Document from the envelope at index within its
// artifact.
func NewDocument(staged StagedDocument, index int) *Document {
	return &Document{
		ID:       DocumentID(staged.Metadata.Fingerprint, index),
		Title:    staged.Metadata.Source,
		Content:  staged.Text,
		Metadata: staged.Metadata.Map(),
	}
}

// DocumentID returns the ID of the document at index within the artifact
// for fp. The first document keeps the bare fingerprint.
func DocumentID(fp Fingerprint, index int) string {
	if index == 0 {
		return fp.String()
	}
	return fp.String() + "#" + strconv.Itoa(index)
}

// Chunk represents a retrievable unit within a document.
// Documents are split into chunks for granular retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	// It is derived from the document ID and position so re-indexing
	// the same document overwrites rather than duplicates.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// Source returns the source file name recorded in the chunk metadata.
func (c Chunk) Source() string {
	s, _ := c.Metadata[MetaSource].(string)
	return s
}

// ChunkID returns the stable ID of the chunk at position within a document.
// It is a UUIDv5 so it is also a valid point ID for remote vector stores.
func ChunkID(documentID string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+"#"+strconv.Itoa(position))).String()
}

// CloneMetadata returns a shallow copy of m that is safe to extend.
func CloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}
