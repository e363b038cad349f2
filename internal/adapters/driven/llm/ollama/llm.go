// Package ollama completes prompts with a local Ollama server.
package ollama

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.1:8b"

	// DefaultLLMTimeout allows for a cold model load on CPU.
	DefaultLLMTimeout = 300 * time.Second
)

// LLMConfig configures LLMService; zero fields take the defaults.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls POST /api/chat with streaming off.
type LLMService struct {
	api   *httpjson.Client
	model string
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMService{
		api:   httpjson.New(cmp.Or(cfg.BaseURL, DefaultBaseURL), timeout, nil),
		model: cmp.Or(cfg.Model, DefaultLLMModel),
	}
}

// Chat maps MaxTokens onto num_predict.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatRequest{
		Model:    s.model,
		Messages: make([]chatMessage, 0, len(messages)),
		Options:  &chatOptions{NumPredict: opts.MaxTokens, Temperature: opts.Temperature},
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage(m))
	}

	var resp chatResponse
	if err := s.api.Do(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return "", httpjson.Classify(ctx, "ollama", domain.ErrLLMUnavailable, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: ollama: %s", domain.ErrLLMUnavailable, resp.Error)
	}
	return resp.Message.Content, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping only checks that the server answers; the model is pulled lazily
// by Ollama on first use.
func (s *LLMService) Ping(ctx context.Context) error {
	err := s.api.Do(ctx, http.MethodGet, "/api/tags", nil, nil)
	return httpjson.Classify(ctx, "ollama", domain.ErrLLMUnavailable, err)
}

func (s *LLMService) Close() error { return nil }
