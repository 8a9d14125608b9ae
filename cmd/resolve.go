package cmd

import (
	"fmt"

	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/uitree"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Map a tag from a reduced tree back to the screen",
	Long: `Resolve a tag against the unreduced dump using the locators saved by reduce.
Prints the element's bounds and center tap point.

Examples:
  uitree reduce screen.xml > reduced.yaml
  uitree resolve --dump screen.xml --locators reduced.yaml --tag n12`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("dump", "", "Unreduced dump the tree was reduced from (- for stdin)")
	resolveCmd.Flags().String("locators", "", "Output of reduce holding the locators")
	resolveCmd.Flags().String("source", "", "Which result to use when the reduce output holds several")
	resolveCmd.Flags().String("tag", "", "Tag to resolve, e.g. n12")
	_ = resolveCmd.MarkFlagRequired("dump")
	_ = resolveCmd.MarkFlagRequired("locators")
	_ = resolveCmd.MarkFlagRequired("tag")
}

func runResolve(cmd *cobra.Command, args []string) error {
	dumpPath, _ := cmd.Flags().GetString("dump")
	locPath, _ := cmd.Flags().GetString("locators")
	source, _ := cmd.Flags().GetString("source")
	tag, _ := cmd.Flags().GetString("tag")

	envs, err := loadEnvelopes(locPath)
	if err != nil {
		return err
	}
	env, err := pickEnvelope(envs, source)
	if err != nil {
		return err
	}
	if len(env.Locators) == 0 {
		return fmt.Errorf("%s has no locators (was it written with --elements-only?)", locPath)
	}

	raw, err := readInput(cmd.InOrStdin(), dumpPath)
	if err != nil {
		return err
	}
	doc, err := uitree.ParseDocument(raw)
	if err != nil {
		return err
	}

	target, err := uitree.Locate(doc, env.Locators, tag)
	if err != nil {
		return err
	}
	return output.Fprint(cmd.OutOrStdout(), output.ResolveResult{OK: true, Target: target})
}
