// Package passage shows one retrieved passage in full.
package passage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// chrome is the number of rows taken by the header, rule, footer and help.
const chrome = 10

const helpText = "[↑/↓] scroll  [pgup/pgdn] page  [g/G] top/bottom  [esc] back"

// View is a scrollable viewport over the passage text, with the source
// label, score and extra metadata above it.
type View struct {
	styles *styles.Styles
	result *domain.SearchResult
	vp     viewport.Model
	width  int
	height int
}

func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{styles: s, vp: viewport.New(0, 0)}
	v.SetDimensions(80, 24)
	return v
}

// SetResult shows r from its first line.
func (v *View) SetResult(r domain.SearchResult) {
	v.result = &r
	v.refill()
	v.vp.GotoTop()
}

func (v *View) Result() *domain.SearchResult { return v.result }

func (v *View) Init() tea.Cmd { return nil }

// ScrollOffset is the index of the first visible line.
func (v *View) ScrollOffset() int { return v.vp.YOffset }

func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.vp.Width = max(width-4, 20)
	v.vp.Height = max(height-chrome, 1)
	v.refill()
}

// refill rewraps the passage to the current width.
func (v *View) refill() {
	if v.result == nil || v.result.Chunk.Content == "" {
		v.vp.SetContent("")
		return
	}
	v.vp.SetContent(lipgloss.NewStyle().Width(v.vp.Width).Render(v.result.Chunk.Content))
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewChat} }
		case "home", "g":
			v.vp.GotoTop()
			return v, nil
		case "end", "G":
			v.vp.GotoBottom()
			return v, nil
		}
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return v, cmd
}

func (v *View) View() string {
	help := v.styles.Help.Render(helpText)
	if v.result == nil {
		return v.styles.Muted.Render("No passage selected") + "\n\n" + help
	}

	r := v.result
	parts := []string{
		v.styles.Citation.Bold(true).Render(list.Label(*r)),
		v.styles.Muted.Render(fmt.Sprintf("chunk %d · score %.3f · %s", r.Chunk.Position, r.Score, r.Chunk.ID)),
	}
	if extra := v.extraMetadata(); extra != "" {
		parts = append(parts, extra)
	}
	parts = append(parts, strings.Repeat("─", min(max(v.width-4, 1), 60)), "")

	total := v.vp.TotalLineCount()
	switch {
	case r.Chunk.Content == "":
		parts = append(parts, v.styles.Muted.Render("(No content)"))
	case total > v.vp.Height:
		first := v.vp.YOffset + 1
		last := min(v.vp.YOffset+v.vp.Height, total)
		parts = append(parts, v.styles.Normal.Render(v.vp.View()), "",
			v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d", first, last, total)))
	default:
		parts = append(parts, v.styles.Normal.Render(v.vp.View()))
	}
	return strings.Join(append(parts, "", help), "\n")
}

// extraMetadata lists metadata not already in the label or the chunk line.
func (v *View) extraMetadata() string {
	meta := v.result.Chunk.Metadata
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if k != domain.MetaSource && k != domain.MetaSection && k != domain.MetaPosition {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = fmt.Sprintf("%s=%v", k, meta[k])
	}
	return v.styles.Muted.Render(strings.Join(keys, "  "))
}
