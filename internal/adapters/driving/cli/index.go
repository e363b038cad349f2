package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var indexFull bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed staged artifacts into the vector collection",
	Long: `Chunks every staged artifact, embeds the chunks in batches and upserts
them into the collection. An artifact is removed from staging only after
its batch is committed.

With --full the collection is deleted and recreated first. A full rebuild
with nothing staged is refused while the collection holds points; use
'lexrag run --full' to stage every source again.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annLock: "true", annEmbedding: "true"},
	RunE:        runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "delete and recreate the collection before indexing")
	rootCmd.AddCommand(indexCmd)
}

func indexMode(full bool) domain.IndexMode {
	if full {
		return domain.IndexFullRebuild
	}
	return domain.IndexIncremental
}

func runIndex(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	_, err = index(cmd, a, indexMode(indexFull))
	return err
}

// index runs one build and prints its report.
func index(cmd *cobra.Command, a *App, mode domain.IndexMode) (*domain.IndexReport, error) {
	progress, finish := progressFunc("Indexing")
	report, err := a.Index.Build(cmd.Context(), mode, progress)
	finish()
	if report != nil {
		printIndexReport(cmd, report)
	}
	return report, err
}

func printIndexReport(cmd *cobra.Command, r *domain.IndexReport) {
	heading(cmd, "Index build (%s)", r.Mode)
	if r.Artifacts == 0 {
		cmd.Println("  Nothing to index.")
		return
	}
	cmd.Printf("  Artifacts: %d\n", r.Artifacts)
	cmd.Printf("  Documents: %d\n", r.Documents)
	cmd.Printf("  Chunks:    %d\n", r.Chunks)
	cmd.Printf("  Batches:   %d\n", r.Batches)
	cmd.Printf("  Consumed:  %d\n", len(r.Consumed))
	for _, f := range r.Failures {
		fail(cmd, "%d artifact(s) kept for retry: %v", len(f.Artifacts), f.Err)
	}
	cmd.Printf("  Took %s\n", round(r.Duration))
}
