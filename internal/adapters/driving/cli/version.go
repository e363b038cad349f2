package cli

import (
	"github.com/spf13/cobra"
)

// version is set by SetVersion from build flags.
var version = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{annNoSetup: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("lexrag version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
