package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker, staging and collection state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	TrackedFiles     int    `json:"tracked_files"`
	PendingArtifacts int    `json:"pending_artifacts"`
	Collection       string `json:"collection"`
	CollectionExists bool   `json:"collection_exists"`
	Dimensions       int    `json:"dimensions"`
	Vectors          int    `json:"vectors"`
	Backend          string `json:"backend"`
	DataDir          string `json:"data_dir"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	st, err := a.Status.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}
	out := statusOutput{
		TrackedFiles:     st.TrackedFiles,
		PendingArtifacts: st.PendingArtifacts,
		Collection:       st.Collection.Name,
		CollectionExists: st.CollectionExists,
		Dimensions:       st.Collection.Dimensions,
		Vectors:          st.VectorCount,
		Backend:          string(a.Settings.VectorStore.Backend),
		DataDir:          a.Settings.Paths.DataDir,
	}
	if statusJSON {
		return outputJSON(cmd, out)
	}

	heading(cmd, "lexrag status")
	cmd.Printf("  Data directory:    %s\n", out.DataDir)
	cmd.Printf("  Tracked files:     %d\n", out.TrackedFiles)
	cmd.Printf("  Pending artifacts: %d\n", out.PendingArtifacts)
	cmd.Printf("  Collection:        %s (%s)\n", out.Collection, out.Backend)
	if !out.CollectionExists {
		warn(cmd, "Collection not created yet. Run 'lexrag index'.")
		return nil
	}
	cmd.Printf("  Dimensions:        %d\n", out.Dimensions)
	cmd.Printf("  Vectors:           %d\n", out.Vectors)
	return nil
}
