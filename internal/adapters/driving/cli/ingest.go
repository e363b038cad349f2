package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Convert new PDFs into staged artifacts",
	Long: `Scans a directory (non-recursively) for contract PDFs, skips files whose
content was already processed, converts and cleans the rest, and stages
each result for indexing.

The directory defaults to paths.source_dir.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annLock: "true"},
	RunE:        runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	_, err = ingest(cmd, a, sourceDir(a, args))
	return err
}

func sourceDir(a *App, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.Settings.Paths.SourceDir
}

// ingest runs one ingestion pass and prints its report.
func ingest(cmd *cobra.Command, a *App, dir string) (*domain.IngestReport, error) {
	progress, finish := progressFunc("Ingesting")
	report, err := a.Ingest.Run(cmd.Context(), dir, progress)
	finish()
	if report != nil {
		printIngestReport(cmd, dir, report)
	}
	return report, err
}

func printIngestReport(cmd *cobra.Command, dir string, r *domain.IngestReport) {
	heading(cmd, "Ingestion of %s", dir)
	cmd.Printf("  Scanned: %d\n", r.Scanned)
	cmd.Printf("  Parsed:  %d\n", r.Parsed)
	cmd.Printf("  Skipped: %d %s\n", r.Skipped, muted("(already processed)"))
	cmd.Printf("  Failed:  %d\n", len(r.Failures))
	for _, f := range r.Failures {
		fail(cmd, "%s: %v", f.Path, f.Err)
	}
	if r.Scanned == 0 {
		warn(cmd, "No matching files found")
	}
	cmd.Printf("  Took %s\n", round(r.Duration))
}
