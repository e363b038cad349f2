package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func render(style lipgloss.Style, s string) string {
	if flagNoColor {
		return s
	}
	return style.Render(s)
}

func heading(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(render(headingStyle, fmt.Sprintf(format, args...)))
}

func ok(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(render(okStyle, "✓ ") + fmt.Sprintf(format, args...))
}

func warn(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(render(warnStyle, "! ") + fmt.Sprintf(format, args...))
}

func fail(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(render(failStyle, "✗ ") + fmt.Sprintf(format, args...))
}

func muted(s string) string {
	return render(mutedStyle, s)
}

func round(d time.Duration) time.Duration {
	return d.Round(10 * time.Millisecond)
}
