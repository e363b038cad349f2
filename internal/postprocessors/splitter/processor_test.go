package splitter

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func newDoc(content string) *domain.Document {
	return &domain.Document{
		ID:       "doc-1",
		Content:  content,
		Metadata: map[string]any{domain.MetaSource: "ppa.pdf"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		wantMax     int
		wantOverlap int
	}{
		{"defaults", nil, domain.DefaultMaxChunkChars, domain.DefaultChunkOverlap},
		{"custom", []Option{WithMaxChars(500), WithOverlap(50)}, 500, 50},
		{"overlap exceeds max", []Option{WithMaxChars(100), WithOverlap(150)}, 100, 25},
		{"invalid values ignored", []Option{WithMaxChars(0), WithOverlap(-1)}, domain.DefaultMaxChunkChars, domain.DefaultChunkOverlap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.opts...)
			assert.Equal(t, tt.wantMax, p.maxChars)
			assert.Equal(t, tt.wantOverlap, p.overlap)
		})
	}
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "splitter", New().Name())
}

func TestProcess_ShortChunksPassThrough(t *testing.T) {
	in := []domain.Chunk{
		{Content: "first", Metadata: map[string]any{domain.MetaSection: "A"}},
		{Content: "second", Metadata: map[string]any{domain.MetaSection: "B"}},
	}
	out, err := New(WithMaxChars(100)).Process(context.Background(), newDoc("ignored"), in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Content)
	assert.Equal(t, "B", out[1].Metadata[domain.MetaSection])
	assert.Equal(t, domain.ChunkID("doc-1", 1), out[1].ID)
}

func TestProcess_PacksParagraphs(t *testing.T) {
	content := strings.Join([]string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}, "\n\n")
	in := []domain.Chunk{{Content: content, Metadata: map[string]any{domain.MetaSection: "Term"}}}

	out, err := New(WithMaxChars(90), WithOverlap(0)).Process(context.Background(), newDoc(""), in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, strings.Repeat("a", 40)+"\n\n"+strings.Repeat("b", 40), out[0].Content)
	assert.Equal(t, strings.Repeat("c", 40), out[1].Content)
	for i, c := range out {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, i, c.Metadata[domain.MetaPosition])
		assert.Equal(t, "Term", c.Metadata[domain.MetaSection])
	}
}

func TestProcess_WindowsLongParagraph(t *testing.T) {
	para := strings.Repeat("é", 250)
	in := []domain.Chunk{{Content: para}}

	out, err := New(WithMaxChars(100), WithOverlap(20)).Process(context.Background(), newDoc(""), in)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 100, utf8.RuneCountInString(out[0].Content))
	assert.Equal(t, 100, utf8.RuneCountInString(out[1].Content))
	assert.Equal(t, 90, utf8.RuneCountInString(out[2].Content))
	for _, c := range out {
		assert.True(t, utf8.ValidString(c.Content))
	}
}

func TestProcess_NilChunksUsesDocument(t *testing.T) {
	out, err := New().Process(context.Background(), newDoc("  whole contract  "), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "whole contract", out[0].Content)
	assert.Equal(t, "ppa.pdf", out[0].Metadata[domain.MetaSource])
	assert.Equal(t, "doc-1", out[0].DocumentID)

	out, err = New().Process(context.Background(), newDoc(""), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	meta := map[string]any{domain.MetaSection: "A"}
	in := []domain.Chunk{{Content: "x", Metadata: meta}}
	_, err := New().Process(context.Background(), newDoc(""), in)
	require.NoError(t, err)
	assert.NotContains(t, meta, domain.MetaPosition)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Process(ctx, newDoc("x"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
