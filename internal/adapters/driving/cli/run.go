package cli

import (
	"github.com/spf13/cobra"
)

var runFull bool

var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Ingest then index",
	Long: `Runs ingest on the directory and then indexes every staged artifact.
Indexing also picks up artifacts left over from earlier runs.

With --full the ingestion tracker is cleared first, so every source is
staged again and the collection is rebuilt from all of them.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annLock: "true", annEmbedding: "true"},
	RunE:        runPipeline,
}

func init() {
	runCmd.Flags().BoolVar(&runFull, "full", false, "rebuild the collection from scratch")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	if runFull {
		if err := a.Ingest.Forget(cmd.Context()); err != nil {
			return err
		}
	}
	if _, err := ingest(cmd, a, sourceDir(a, args)); err != nil {
		return err
	}
	cmd.Println()
	report, err := index(cmd, a, indexMode(runFull))
	if err != nil {
		return err
	}
	if len(report.Failures) == 0 {
		ok(cmd, "Pipeline complete")
	}
	return nil
}
