package cmd

import (
	"fmt"

	"github.com/mj1618/uitree/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "uitree %s (commit: %s, built: %s)\n",
			version.Version, version.Commit, version.BuildDate)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
