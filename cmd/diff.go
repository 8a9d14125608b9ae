package cmd

import (
	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/uitree"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the elements of two observations",
	Long: `Compare the element lists of two reduce outputs. Elements are paired by a
hash of their primary locator and action, so a changed label shows up as a change
rather than a removal and an addition.

Examples:
  uitree diff --before before.yaml --after after.yaml`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().String("before", "", "Earlier reduce output")
	diffCmd.Flags().String("after", "", "Later reduce output")
	diffCmd.Flags().String("source", "", "Which result to use when an output holds several")
	_ = diffCmd.MarkFlagRequired("before")
	_ = diffCmd.MarkFlagRequired("after")
}

func runDiff(cmd *cobra.Command, args []string) error {
	beforePath, _ := cmd.Flags().GetString("before")
	afterPath, _ := cmd.Flags().GetString("after")
	source, _ := cmd.Flags().GetString("source")

	before, err := loadOne(beforePath, source)
	if err != nil {
		return err
	}
	after, err := loadOne(afterPath, source)
	if err != nil {
		return err
	}

	changes, err := uitree.DiffElements(before.Elements, after.Elements)
	if err != nil {
		return err
	}
	if changes == nil {
		changes = []uitree.ElementChange{}
	}
	return output.Fprint(cmd.OutOrStdout(), output.DiffResult{
		Before:  beforePath,
		After:   afterPath,
		Changes: changes,
	})
}

func loadOne(path, source string) (output.ReduceResult, error) {
	envs, err := loadEnvelopes(path)
	if err != nil {
		return output.ReduceResult{}, err
	}
	return pickEnvelope(envs, source)
}
