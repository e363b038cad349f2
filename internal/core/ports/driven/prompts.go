package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system prompt for answering questions over
	// retrieved contract excerpts. It has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the context and question. The template expects
	// two %s placeholders: context, then question.
	PromptAnswerUser = "answer_user"
)
