// Package styles holds the chat screen's palette and lipgloss styles.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the palette. Secondary marks questions, Citation marks source
// labels, Bar is the status bar background.
type Theme struct {
	Primary, Secondary, Foreground, Muted lipgloss.Color
	Citation, Warning, Error              lipgloss.Color
	Border, Bar                           lipgloss.Color
}

// DefaultTheme is a muted slate and brass palette for dark terminals.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    "#4F7CAC",
		Secondary:  "#C9A227",
		Foreground: "#E6E1D6",
		Muted:      "#7D8491",
		Citation:   "#8FB8A8",
		Warning:    "#E0B354",
		Error:      "#D9695F",
		Border:     "#3B4252",
		Bar:        "#20242C",
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title, Subtitle, Normal, Muted, Selected lipgloss.Style
	Error, Warning                           lipgloss.Style
	Question, Answer, Citation               lipgloss.Style
	InputField, StatusBar, Help              lipgloss.Style
}

// NewStyles derives styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:      theme,
		Title:      fg(theme.Primary).Bold(true),
		Subtitle:   fg(theme.Citation).Bold(true),
		Normal:     fg(theme.Foreground),
		Muted:      fg(theme.Muted),
		Selected:   fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Error:      fg(theme.Error),
		Warning:    fg(theme.Warning).Italic(true),
		Question:   fg(theme.Secondary).Bold(true),
		Answer:     fg(theme.Foreground).PaddingLeft(2),
		Citation:   fg(theme.Citation),
		InputField: lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Help:       fg(theme.Muted),
	}
}

// DefaultStyles is NewStyles(DefaultTheme()).
func DefaultStyles() *Styles { return NewStyles(nil) }

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme { return s.theme }
