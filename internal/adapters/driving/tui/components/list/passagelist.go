// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// PassageList displays the passages an answer was grounded on.
type PassageList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates a new passage list component.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (p *PassageList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (p *PassageList) Update(msg tea.Msg) (*PassageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			p.MoveUp()
		case "down", "j":
			p.MoveDown()
		}
	}
	return p, nil
}

// View renders the list.
func (p *PassageList) View(focused bool) string {
	if len(p.results) == 0 {
		return ""
	}

	lines := make([]string, 0, len(p.results)+1)
	lines = append(lines, p.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(p.results))))

	// Two lines per passage: label and preview.
	visible := (p.height - 1) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := start + visible
	if end > len(p.results) {
		end = len(p.results)
	}

	for i := start; i < end; i++ {
		lines = append(lines, p.renderPassage(i, focused))
	}
	return strings.Join(lines, "\n")
}

// renderPassage formats one passage as a label line and a preview line.
func (p *PassageList) renderPassage(index int, focused bool) string {
	r := p.results[index]
	label := fmt.Sprintf("[%d] %s", index+1, Label(r))
	score := fmt.Sprintf("%.3f", r.Score)

	maxLabel := p.width - 12
	if maxLabel < 10 {
		maxLabel = 10
	}
	label = truncate(label, maxLabel)

	var labelLine string
	if focused && index == p.selected {
		labelLine = p.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", maxLabel, label, score))
	} else {
		labelLine = p.styles.Normal.Render(fmt.Sprintf("  %-*s  ", maxLabel, label)) +
			p.styles.Citation.Render(score)
	}

	preview := strings.Join(strings.Fields(r.Chunk.Content), " ")
	preview = truncate(preview, p.width-6)
	return labelLine + "\n" + p.styles.Muted.Render("    "+preview)
}

// Label names a passage by source file and section.
func Label(r domain.SearchResult) string {
	label := r.Chunk.Source()
	if label == "" {
		label = r.Chunk.DocumentID
	}
	if section, _ := r.Chunk.Metadata[domain.MetaSection].(string); section != "" {
		label += " · " + section
	}
	return label
}

func truncate(s string, n int) string {
	if n < 20 {
		n = 20
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetResults updates the list.
func (p *PassageList) SetResults(results []domain.SearchResult) {
	p.results = results
	p.selected = 0
}

// Results returns the current passages.
func (p *PassageList) Results() []domain.SearchResult {
	return p.results
}

// Selected returns the index of the selected passage.
func (p *PassageList) Selected() int {
	return p.selected
}

// SelectedResult returns the currently selected passage, or nil if none.
func (p *PassageList) SelectedResult() *domain.SearchResult {
	if len(p.results) == 0 {
		return nil
	}
	return &p.results[p.selected]
}

// MoveUp moves selection up.
func (p *PassageList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *PassageList) MoveDown() {
	if p.selected < len(p.results)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *PassageList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of passages.
func (p *PassageList) Count() int {
	return len(p.results)
}
