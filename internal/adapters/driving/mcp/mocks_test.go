package mcp

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	status *domain.Status
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.Status, error) {
	return m.status, m.err
}

func sampleResult() domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{
			ID:         "c-1",
			DocumentID: "doc-1",
			Content:    "The Buyer shall pay the Tariff monthly.",
			Position:   4,
			Metadata: map[string]any{
				domain.MetaSource:  "ppa.pdf",
				domain.MetaSection: "Payment",
			},
		},
		Score: 0.91,
	}
}
