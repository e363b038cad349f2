package driven

import "context"

// LLMService completes the grounded answer prompt. It is optional: when
// none is configured, ask and chat are unavailable while search still works.
type LLMService interface {
	// Chat returns one non-streamed completion of messages.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a prompt.
type ChatMessage struct {
	Role    string // RoleSystem, RoleUser or RoleAssistant
	Content string
}

// ChatOptions tunes a completion. Zero MaxTokens leaves the provider default.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
