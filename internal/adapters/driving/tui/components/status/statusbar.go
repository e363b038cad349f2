// Package status renders the one-line footer of the chat screen.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
)

// State is what the chat screen is doing.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateAnswered State = "answered"
	StateSources  State = "sources"
)

const defaultWidth = 80

// Bar shows the state on the left and key hints on the right. It holds
// no behaviour of its own; the chat view drives it through the setters.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	state   State
	message string
	sources int
	width   int
}

// NewBar returns a bar in StateReady. Nil arguments take the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: defaultWidth}
}

func (s *Bar) SetState(state State)  { s.state = state }
func (s *Bar) State() State          { return s.state }
func (s *Bar) SetMessage(msg string) { s.message = msg }
func (s *Bar) SetSourceCount(n int)  { s.sources = n }
func (s *Bar) SetWidth(width int)    { s.width = width }

// Clear returns the bar to StateReady with no message or sources.
func (s *Bar) Clear() {
	s.state, s.message, s.sources = StateReady, "", 0
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left, right := s.summary(), s.hints()
	gap := max(1, s.width-lipgloss.Width(left)-lipgloss.Width(right))
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) summary() string {
	st := s.styles
	switch s.state {
	case StateThinking:
		return st.Muted.Render("Thinking...")
	case StateError:
		if s.message == "" {
			return st.Error.Render("Error")
		}
		return st.Error.Render("Error: " + s.message)
	case StateAnswered, StateSources:
		if s.sources == 0 {
			return st.Warning.Render("No relevant documents found")
		}
		return st.Normal.Render(fmt.Sprintf("%d sources", s.sources))
	}
	if s.message != "" {
		return st.Muted.Render(s.message)
	}
	return st.Muted.Render("Ready")
}

func (s *Bar) hints() string {
	var bindings []key.Binding
	if s.state == StateSources {
		bindings = s.keymap.SourcesHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.Help().Key + ": " + b.Help().Desc
	}
	return s.styles.Muted.Render(strings.Join(parts, " | "))
}
