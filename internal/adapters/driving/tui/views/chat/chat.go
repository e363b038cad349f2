// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// ErrNoAnswerService indicates that no answer service was provided.
var ErrNoAnswerService = errors.New("answer service is required")

// NoContextReply is shown when retrieval finds nothing.
const NoContextReply = "No relevant documents found."

// Turn is one question and its outcome.
type Turn struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// View is the chat view: transcript, sources of the last answer, input
// and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	list      *list.PassageList
	statusbar *status.Bar
	spinner   spinner.Model

	answerService driving.AnswerService
	ctx           context.Context

	turns      []Turn
	pending    bool
	focusInput bool

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		list:          list.NewPassageList(s),
		statusbar:     status.NewBar(s, km),
		spinner:       sp,
		answerService: answerService,
		ctx:           context.Background(),
		focusInput:    true,
		width:         80,
		height:        24,
	}
}

// WithContext sets the context used for answer requests.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.pending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.pending = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Input is frozen until the pending answer arrives.
	if v.pending {
		return v, nil
	}

	if !v.focusInput {
		return v.handleSourcesKey(msg)
	}

	switch msg.Type {
	case tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		switch strings.ToLower(question) {
		case "exit", "quit":
			return v, func() tea.Msg { return messages.Quit{} }
		}
		v.input.Reset()
		return v, v.ask(question)
	case tea.KeyTab:
		if v.list.Count() > 0 {
			v.focusInput = false
			v.input.Blur()
			v.statusbar.SetState(status.StateSources)
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleSourcesKey processes keys while the source list has focus.
func (v *View) handleSourcesKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.Select):
		if r := v.list.SelectedResult(); r != nil {
			selected := *r
			return v, func() tea.Msg { return messages.PassageSelected{Result: selected} }
		}
	case key.Matches(msg, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case key.Matches(msg, v.keymap.Sources), key.Matches(msg, v.keymap.Back):
		v.focusInput = true
		v.statusbar.SetState(status.StateAnswered)
		return v, v.input.Focus()
	}
	return v, nil
}

// ask records the question and returns the command that answers it.
func (v *View) ask(question string) tea.Cmd {
	v.turns = append(v.turns, Turn{Question: question})
	v.pending = true
	v.list.SetResults(nil)
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")

	service, ctx := v.answerService, v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		if service == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAnswerService}
		}
		answer, err := service.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	})
}

// handleAnswer stores the outcome on the pending turn.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false
	if n := len(v.turns); n > 0 {
		v.turns[n-1].Answer = msg.Answer
		v.turns[n-1].Err = msg.Err
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	var sources []domain.SearchResult
	if msg.Answer != nil {
		sources = msg.Answer.Sources
	}
	v.list.SetResults(sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetSourceCount(len(sources))
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	listView := v.list.View(!v.focusInput)
	reserved := 8 + lipgloss.Height(listView)

	sections := []string{
		v.styles.Title.Render("lexrag") + v.styles.Muted.Render("  contract Q&A"),
		"",
		v.renderTranscript(v.height - reserved),
		"",
	}
	if listView != "" {
		sections = append(sections, listView, "")
	}
	if v.pending {
		sections = append(sections, v.spinner.View()+v.styles.Muted.Render(" retrieving and answering..."))
	} else {
		sections = append(sections, v.input.View())
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript renders the most recent turns that fit in maxLines.
func (v *View) renderTranscript(maxLines int) string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Type a question and press enter. Type 'exit' or 'quit' to stop.")
	}

	wrap := lipgloss.NewStyle().Width(v.width - 4)
	var blocks []string
	for _, t := range v.turns {
		blocks = append(blocks, v.styles.Question.Render("You: ")+wrap.Render(t.Question))
		switch {
		case t.Err != nil:
			blocks = append(blocks, v.styles.Error.Render("Error: "+t.Err.Error()))
		case t.Answer == nil:
			// pending
		case len(t.Answer.Sources) == 0:
			blocks = append(blocks, v.styles.Warning.Render(NoContextReply))
		default:
			blocks = append(blocks, v.styles.Answer.Width(v.width-4).Render(t.Answer.Text))
		}
		blocks = append(blocks, "")
	}

	lines := strings.Split(strings.Join(blocks, "\n"), "\n")
	if maxLines < 3 {
		maxLines = 3
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height/3)
	v.statusbar.SetWidth(width)
}

// Turns returns the conversation so far.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending reports whether an answer is being generated.
func (v *View) Pending() bool {
	return v.pending
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Sources returns the passages behind the last answer.
func (v *View) Sources() []domain.SearchResult {
	return v.list.Results()
}

// SetQuestion sets the input text.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}
