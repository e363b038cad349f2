package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// staticSearch returns fixed results.
type staticSearch struct {
	results []domain.SearchResult
	err     error
	opts    domain.SearchOptions
}

func (s *staticSearch) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	s.opts = opts
	return s.results, s.err
}

func passages(texts ...string) []domain.SearchResult {
	out := make([]domain.SearchResult, len(texts))
	for i, text := range texts {
		out[i] = domain.SearchResult{Chunk: domain.Chunk{Content: text}, Score: 1 - float64(i)/10}
	}
	return out
}

func newAnswerService(search *staticSearch, llm *fakeLLM) *AnswerService {
	defaults := domain.DefaultAppSettings("/tmp/lexrag")
	return NewAnswerService(search, llm, fakePrompts{}, defaults.Chat, defaults.LLM, nil)
}

func TestAnswerService_Ask(t *testing.T) {
	search := &staticSearch{results: passages("p1", "p2", "p3", "p4", "p5")}
	llm := &fakeLLM{reply: "  The term is 20 years.  "}

	answer, err := newAnswerService(search, llm).Ask(context.Background(), " What is the term? ")
	require.NoError(t, err)

	assert.Equal(t, "What is the term?", answer.Question)
	assert.Equal(t, "The term is 20 years.", answer.Text)
	assert.Len(t, answer.Sources, 3, "only the best passages are used as context")
	assert.Equal(t, domain.DefaultTopK, search.opts.Limit)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleSystem, Content: "SYSTEM"}, llm.messages[0])
	assert.Equal(t, driven.RoleUser, llm.messages[1].Role)
	assert.Equal(t, "Context:\np1\n\np2\n\np3\n\nQuestion: What is the term?", llm.messages[1].Content)
	assert.Equal(t, driven.ChatOptions{MaxTokens: 500, Temperature: 0.1}, llm.opts)
}

func TestAnswerService_Ask_NoPassages(t *testing.T) {
	llm := &fakeLLM{reply: "unused"}

	answer, err := newAnswerService(&staticSearch{}, llm).Ask(context.Background(), "Anything?")
	require.NoError(t, err)
	assert.Empty(t, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, llm.calls)
}

func TestAnswerService_Ask_Errors(t *testing.T) {
	t.Run("empty question", func(t *testing.T) {
		_, err := newAnswerService(&staticSearch{}, &fakeLLM{}).Ask(context.Background(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("retrieval failure", func(t *testing.T) {
		search := &staticSearch{err: domain.ErrCollectionNotFound}
		_, err := newAnswerService(search, &fakeLLM{}).Ask(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
	})

	t.Run("completion failure", func(t *testing.T) {
		search := &staticSearch{results: passages("p1")}
		_, err := newAnswerService(search, &fakeLLM{err: domain.ErrRateLimited}).Ask(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})
}
