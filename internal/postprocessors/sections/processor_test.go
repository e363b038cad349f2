package sections

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func newDoc(content string) *domain.Document {
	return &domain.Document{
		ID:       "doc-1",
		Title:    "ppa.pdf",
		Content:  content,
		Metadata: map[string]any{domain.MetaSource: "ppa.pdf", domain.MetaTotalPages: 4},
	}
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "sections", New().Name())
}

func TestProcess_SplitsOnHeadings(t *testing.T) {
	content := `Preamble text.

# Power Purchase Agreement

## 1. Definitions

"Seller" means the project company.

### 1.1 Interpretation

Headings are for convenience.

## 2. Term

Twenty years.`

	chunks, err := New().Process(context.Background(), newDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	assert.Equal(t, "Preamble text.", chunks[0].Content)
	assert.NotContains(t, chunks[0].Metadata, domain.MetaSection)

	assert.Equal(t, "# Power Purchase Agreement", chunks[1].Content)
	assert.Equal(t, "Power Purchase Agreement", chunks[1].Metadata[domain.MetaSection])

	assert.Equal(t, "## 1. Definitions\n\n\"Seller\" means the project company.", chunks[2].Content)
	assert.Equal(t, "Power Purchase Agreement > 1. Definitions", chunks[2].Metadata[domain.MetaSection])

	assert.Equal(t, "Power Purchase Agreement > 1. Definitions > 1.1 Interpretation", chunks[3].Metadata[domain.MetaSection])
	assert.Equal(t, "Power Purchase Agreement > 2. Term", chunks[4].Metadata[domain.MetaSection])
	assert.Equal(t, "## 2. Term\n\nTwenty years.", chunks[4].Content)
}

func TestProcess_InheritsMetadataAndAssignsIDs(t *testing.T) {
	doc := newDoc("# A\n\none\n\n# B\n\ntwo")
	chunks, err := New().Process(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, i, c.Metadata[domain.MetaPosition])
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, domain.ChunkID("doc-1", i), c.ID)
		assert.Equal(t, "ppa.pdf", c.Metadata[domain.MetaSource])
		assert.Equal(t, 4, c.Metadata[domain.MetaTotalPages])
	}
	assert.NotContains(t, doc.Metadata, domain.MetaSection, "document metadata is not mutated")
}

func TestProcess_IgnoresHeadingsInCodeFences(t *testing.T) {
	content := "# Schedule\n\n```\n# not a heading\n```\n\nafter"
	chunks, err := New().Process(context.Background(), newDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, "# not a heading")
}

func TestProcess_ClosingHashesAndEmptyHeadings(t *testing.T) {
	content := "## Annex A ##\n\nbody\n\n#\n\nstill annex"
	chunks, err := New().Process(context.Background(), newDoc(content), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Annex A", chunks[0].Metadata[domain.MetaSection])
}

func TestProcess_HashWithoutSpaceIsText(t *testing.T) {
	chunks, err := New().Process(context.Background(), newDoc("#hashtag\nline"), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Metadata, domain.MetaSection)
}

func TestProcess_EmptyContent(t *testing.T) {
	chunks, err := New().Process(context.Background(), newDoc(" \n\n "), nil)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Process(ctx, newDoc("# A"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
