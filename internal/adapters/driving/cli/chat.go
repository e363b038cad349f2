package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Ask questions about the indexed contracts interactively",
	Long: `Launch the interactive chat. Each question retrieves the most similar
contract passages and the configured LLM answers from them alone.

Controls:
  Enter     - Ask / open passage
  Tab       - Move between input and sources
  ↑/k, ↓/j  - Navigate sources / scroll passage
  Esc       - Back
  ?         - Toggle help
  Ctrl+C    - Quit

Typing 'exit' or 'quit' also ends the session.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annEmbedding: "true", annLLM: "true"},
	RunE:        runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("chat: %v", r)
		}
	}()

	a, err := requireApp()
	if err != nil {
		return err
	}

	ui, err := tui.NewApp(tui.NewPorts(a.Answer, a.Status))
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	if err := ui.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
