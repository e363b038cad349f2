package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewChat, "chat"},
		{ViewPassage, "passage"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestAnswerReceived(t *testing.T) {
	t.Run("with answer", func(t *testing.T) {
		answer := &domain.Answer{Question: "q", Text: "a"}
		msg := AnswerReceived{Question: "q", Answer: answer}

		assert.Same(t, answer, msg.Answer)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := AnswerReceived{Question: "q", Err: domain.ErrLLMUnavailable}

		assert.Nil(t, msg.Answer)
		assert.True(t, errors.Is(msg.Err, domain.ErrLLMUnavailable))
	})
}

func TestPassageSelected(t *testing.T) {
	msg := PassageSelected{Result: domain.SearchResult{Chunk: domain.Chunk{ID: "c1"}, Score: 0.5}}

	assert.Equal(t, "c1", msg.Result.Chunk.ID)
	assert.InDelta(t, 0.5, msg.Result.Score, 1e-9)
}
