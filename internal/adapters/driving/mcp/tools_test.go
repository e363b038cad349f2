package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		search := &mockSearchService{results: []domain.SearchResult{sampleResult()}}
		server, err := NewServer(&Ports{Search: search})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "tariff", Limit: 3, Source: "ppa.pdf"})

		require.NoError(t, err)
		assert.Equal(t, "tariff", search.query)
		assert.Equal(t, domain.SearchOptions{Limit: 3, Source: "ppa.pdf"}, search.opts)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, PassageOutput{
			ChunkID:    "c-1",
			DocumentID: "doc-1",
			Source:     "ppa.pdf",
			Section:    "Payment",
			Position:   4,
			Score:      0.91,
			Content:    "The Buyer shall pay the Tariff monthly.",
		}, output.Results[0])
	})

	t.Run("default limit", func(t *testing.T) {
		search := &mockSearchService{}
		server, err := NewServer(&Ports{Search: search})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "tariff"})

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultTopK, search.opts.Limit)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		search := &mockSearchService{err: domain.ErrCollectionNotFound}
		server, err := NewServer(&Ports{Search: search})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "tariff"})
		require.ErrorIs(t, err, domain.ErrCollectionNotFound)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{
			Question: "When is the tariff paid?",
			Text:     "Monthly.",
			Sources:  []domain.SearchResult{sampleResult()},
		}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Answer: answer})
		require.NoError(t, err)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "When is the tariff paid?"})

		require.NoError(t, err)
		assert.True(t, out.Found)
		assert.Equal(t, "Monthly.", out.Answer)
		require.Len(t, out.Sources, 1)
		assert.Equal(t, "ppa.pdf", out.Sources[0].Source)
	})

	t.Run("no context found", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{Question: "q"}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Answer: answer})
		require.NoError(t, err)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.False(t, out.Found)
		assert.Equal(t, "No relevant documents found.", out.Answer)
		assert.Empty(t, out.Sources)
	})

	t.Run("propagates errors", func(t *testing.T) {
		answer := &mockAnswerService{err: errors.New("llm down")}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Answer: answer})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm down")
	})
}
