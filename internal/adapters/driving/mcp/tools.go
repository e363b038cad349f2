package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// SearchInput is the input schema for the search_contracts tool.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"the question or clause to look for"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
	Source string `json:"source,omitempty" jsonschema:"restrict results to one contract file name"`
}

// SearchOutput is the output schema for the search_contracts tool.
type SearchOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput is one retrieved contract passage.
type PassageOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	Section    string  `json:"section,omitempty"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a question about the indexed contracts"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string          `json:"answer"`
	Found   bool            `json:"found"`
	Sources []PassageOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "search_contracts",
		Description: "Retrieve the contract passages most similar to a query",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.sdk, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the indexed contracts, citing the passages used",
		}, s.handleAsk)
	}
}

// handleSearch handles the search_contracts tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	opts := domain.SearchOptions{Limit: limit, Source: input.Source}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Results: passages(results),
		Count:   len(results),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:  answer.Text,
		Found:   len(answer.Sources) > 0,
		Sources: passages(answer.Sources),
	}
	if !out.Found {
		out.Answer = "No relevant documents found."
	}
	return nil, out, nil
}

func passages(results []domain.SearchResult) []PassageOutput {
	out := make([]PassageOutput, len(results))
	for i := range results {
		c := results[i].Chunk
		section, _ := c.Metadata[domain.MetaSection].(string)
		out[i] = PassageOutput{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Source:     c.Source(),
			Section:    section,
			Position:   c.Position,
			Score:      results[i].Score,
			Content:    c.Content,
		}
	}
	return out
}
