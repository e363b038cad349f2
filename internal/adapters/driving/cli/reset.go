package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var resetYes bool

// stdinIsTerminal reports whether confirmation can be read interactively.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all staged, indexed and tracked data",
	Long: `Clears the staging cache, deletes the vector collection, drops the
ingestion tracker and removes the log file.

WARNING: This operation is destructive and cannot be undone!

You are asked to type 'yes' to confirm. Pass --yes to skip the prompt;
it is required when stdin is not a terminal.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annLock: "true"},
	RunE:        runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset without prompting")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	if !resetYes {
		if !stdinIsTerminal() {
			return fmt.Errorf("%w: stdin is not a terminal, pass --yes to confirm the reset", domain.ErrInvalidInput)
		}
		warn(cmd, "This deletes the staging cache, the collection %q, the tracker and the log.",
			a.Settings.VectorStore.Collection)
		cmd.Print("Type 'yes' to continue: ")
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "yes") {
			cmd.Println("Reset cancelled.")
			return nil
		}
	}

	// The log file is one of the removed files.
	if err := closeLog(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}

	report, err := a.Reset.Reset(cmd.Context())
	if report != nil {
		for _, item := range report.Removed {
			ok(cmd, "Removed %s", item)
		}
	}
	if err != nil {
		return err
	}
	cmd.Println("Reset complete. Run 'lexrag run' to rebuild.")
	return nil
}
