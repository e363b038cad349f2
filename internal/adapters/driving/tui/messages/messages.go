// Package messages holds the tea.Msg types exchanged between the chat
// screen's models.
package messages

import (
	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// AnswerReceived carries a generated answer back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// PassageSelected is sent when a source passage is opened.
type PassageSelected struct {
	Result domain.SearchResult
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question and answer view.
	ViewChat ViewType = iota
	// ViewPassage shows one source passage in full.
	ViewPassage
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewPassage:
		return "passage"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// HeaderLoaded carries the index summary shown in the help screen.
type HeaderLoaded struct {
	Text string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
