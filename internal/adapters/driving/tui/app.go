package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/views/passage"
)

var _ tea.Model = (*App)(nil)

// App routes messages between the chat, passage and help screens.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView    *chat.View
	passageView *passage.View
	current     messages.ViewType

	header string // index summary, filled asynchronously after Init
	err    error  // last answer or runtime error
	ready  bool   // set by the first WindowSizeMsg
}

// NewApp fails when ports lacks an AnswerService.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	s, km := styles.DefaultStyles(), keymap.DefaultKeyMap()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Answer),
		passageView: passage.NewView(s),
		current:     messages.ViewChat,
	}, nil
}

// WithContext bounds status and answer calls by ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("lexrag - contract chat"),
		a.loadHeader,
		a.chatView.Init(),
	)
}

// loadHeader summarises the index. Without a status port it yields nil.
func (a *App) loadHeader() tea.Msg {
	if a.ports.Status == nil {
		return nil
	}
	st, err := a.ports.Status.Status(a.ctx)
	if err != nil {
		return messages.HeaderLoaded{Text: "index status unavailable: " + err.Error()}
	}
	return messages.HeaderLoaded{Text: fmt.Sprintf("%d files tracked · collection %s · %d vectors",
		st.TrackedFiles, st.Collection.Name, st.VectorCount)}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	case messages.Quit:
		return a, tea.Quit
	case messages.HeaderLoaded:
		a.header = msg.Text
		return a, nil
	case messages.PassageSelected:
		a.passageView.SetResult(msg.Result)
		a.current = messages.ViewPassage
		return a, nil
	case messages.ViewChanged:
		a.current = msg.View
		return a, nil
	case messages.AnswerReceived:
		a.err = msg.Err
	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	// Answers, errors, spinner ticks and cursor blinks go to the chat view.
	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keymap.Quit) {
		return tea.Quit
	}
	var cmd tea.Cmd
	switch a.current {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewPassage:
		a.passageView, cmd = a.passageView.Update(msg)
	case messages.ViewHelp:
		if key.Matches(msg, a.keymap.Back) || msg.String() == "q" {
			a.current = messages.ViewChat
		}
	}
	return cmd
}

func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.current {
	case messages.ViewPassage:
		return a.passageView.View()
	case messages.ViewHelp:
		return a.helpView()
	default:
		return a.chatView.View()
	}
}

func (a *App) helpView() string {
	lines := []string{a.styles.Title.Render("Help")}
	if a.header != "" {
		lines = append(lines, a.styles.Muted.Render(a.header))
	}
	lines = append(lines, "")
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			lines = append(lines, fmt.Sprintf("  %-12s %s", b.Help().Key, b.Help().Desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines,
		"Type 'exit' or 'quit' to leave the chat.",
		"",
		a.styles.Help.Render("[esc] back to chat"))
	return strings.Join(lines, "\n")
}

// Run blocks until the user quits or the context ends.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

func (a *App) CurrentView() messages.ViewType { return a.current }
func (a *App) Chat() *chat.View                { return a.chatView }
func (a *App) Passage() *passage.View          { return a.passageView }
func (a *App) Header() string                  { return a.header }
func (a *App) Err() error                      { return a.err }
func (a *App) Ready() bool                     { return a.ready }

// SetDimensions resizes every view and marks the app ready.
func (a *App) SetDimensions(width, height int) {
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.passageView.SetDimensions(width, height)
}
