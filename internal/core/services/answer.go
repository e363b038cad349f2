package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
	"github.com/custodia-labs/lexrag/internal/metrics"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// contextSeparator joins retrieved passages in the prompt.
const contextSeparator = "\n\n"

// AnswerService answers questions with one completion over retrieved passages.
type AnswerService struct {
	search        driving.SearchService
	llm           driven.LLMService
	prompts       driven.PromptStore
	topK          int
	contextChunks int
	chatOpts      driven.ChatOptions
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewAnswerService creates an answer service. m may be nil.
func NewAnswerService(
	search driving.SearchService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	chat domain.ChatSettings,
	llmSettings domain.LLMSettings,
	m *metrics.Metrics,
) *AnswerService {
	if chat.TopK <= 0 {
		chat.TopK = domain.DefaultTopK
	}
	if chat.ContextChunks <= 0 {
		chat.ContextChunks = domain.DefaultContextChunks
	}
	if llmSettings.MaxTokens <= 0 {
		llmSettings.MaxTokens = domain.DefaultMaxTokens
	}
	return &AnswerService{
		search:        search,
		llm:           llm,
		prompts:       prompts,
		topK:          chat.TopK,
		contextChunks: chat.ContextChunks,
		chatOpts: driven.ChatOptions{
			MaxTokens:   llmSettings.MaxTokens,
			Temperature: llmSettings.Temperature,
		},
		metrics: m,
		now:     time.Now,
	}
}

// Ask retrieves passages for the question and generates one answer from
// the best of them. When nothing is retrieved the model is not called
// and the answer has no text and no sources.
func (s *AnswerService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	results, err := s.search.Search(ctx, question, domain.SearchOptions{Limit: s.topK})
	if err != nil {
		return nil, err
	}
	answer := &domain.Answer{Question: question}
	if len(results) == 0 {
		logger.Info("No passages retrieved for question")
		return answer, nil
	}
	if len(results) > s.contextChunks {
		results = results[:s.contextChunks]
	}
	answer.Sources = results

	messages, err := s.buildMessages(question, results)
	if err != nil {
		return nil, err
	}

	started := s.now()
	text, err := s.llm.Chat(ctx, messages, s.chatOpts)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	s.metrics.Answer(s.now().Sub(started))

	answer.Text = strings.TrimSpace(text)
	return answer, nil
}

func (s *AnswerService) buildMessages(question string, results []domain.SearchResult) ([]driven.ChatMessage, error) {
	system, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptAnswerSystem, err)
	}
	user, err := s.prompts.Load(driven.PromptAnswerUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptAnswerUser, err)
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Chunk.Content
	}

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, strings.Join(passages, contextSeparator), question)},
	}, nil
}
