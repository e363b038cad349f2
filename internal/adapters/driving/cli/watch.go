package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var watchDebounce = watch.DefaultDebounce

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest and index contracts as they arrive",
	Long: `Runs one ingest and index pass, then watches the directory and processes
new or changed PDFs once it has been quiet for the debounce period.
Stops on Ctrl+C.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annLock: "true", annEmbedding: "true"},
	RunE:        runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before processing changes")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	dir := sourceDir(a, args)

	if _, err := ingest(cmd, a, dir); err != nil {
		return err
	}
	if _, err := index(cmd, a, domain.IndexIncremental); err != nil {
		return err
	}

	w, err := watch.New(a.Ingest, a.Index, watch.Config{
		Debounce: watchDebounce,
		OnFile: func(r watch.FileResult) {
			switch {
			case r.Err != nil:
				fail(cmd, "%s: %v", r.Path, r.Err)
			case r.Skipped:
				cmd.Printf("  %s %s\n", r.Path, muted("(already processed)"))
			default:
				ok(cmd, "Ingested %s", r.Path)
			}
		},
		OnIndex: func(r *domain.IndexReport, err error) {
			if err != nil {
				fail(cmd, "Index build failed: %v", err)
				return
			}
			ok(cmd, "Indexed %d chunk(s) from %d artifact(s)", r.Chunks, r.Artifacts)
		},
	})
	if err != nil {
		return err
	}

	cmd.Println()
	heading(cmd, "Watching %s (Ctrl+C to stop)", dir)
	return w.Run(cmd.Context(), dir)
}
