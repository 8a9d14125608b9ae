package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/uitree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [dump.xml|glob|-]...",
	Short: "Reduce UI hierarchy dumps to compact tagged trees",
	Long: `Reduce raw Android UI hierarchy dumps (uiautomator XML) to compact trees for
prompting. Each dump yields the serialized tree, a locator per tag and the list of
interactive and readable elements.

Examples:
  adb exec-out uiautomator dump /dev/tty | uitree reduce
  uitree reduce dumps/*.xml --jobs 8 --tokens
  uitree reduce screen.xml --str-type plain_text --tree-only`,
	RunE: runReduce,
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	addReduceFlags(reduceCmd)
	reduceCmd.Flags().Int("jobs", 0, "Dumps reduced in parallel (default from config)")
	reduceCmd.Flags().Bool("tokens", false, "Count the tokens of each serialized tree")
	reduceCmd.Flags().String("token-model", "", "Model whose tokenizer is used with --tokens (default from config)")
	reduceCmd.Flags().Bool("elements-only", false, "Omit the tree and locators from the output")
	reduceCmd.Flags().Bool("tree-only", false, "Print only the serialized tree text")
}

func runReduce(cmd *cobra.Command, args []string) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	opts := reduceOptions(cmd)
	jobs := cfg.Reduce.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs, _ = cmd.Flags().GetInt("jobs")
	}
	if jobs < 1 {
		return fmt.Errorf("--jobs must be positive")
	}
	countTokens, _ := cmd.Flags().GetBool("tokens")
	elementsOnly, _ := cmd.Flags().GetBool("elements-only")
	treeOnly, _ := cmd.Flags().GetBool("tree-only")
	if elementsOnly && treeOnly {
		return fmt.Errorf("--elements-only and --tree-only are mutually exclusive")
	}

	var counter *output.TokenCounter
	if countTokens {
		model, _ := cmd.Flags().GetString("token-model")
		if model == "" {
			model = cfg.Reduce.TokenModel
		}
		counter = output.NewTokenCounter(model)
	}

	results, err := reduceAll(cmd.Context(), cmd, inputs, opts, jobs, counter)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if treeOnly {
		for _, r := range results {
			if _, err := fmt.Fprintln(w, r.Tree); err != nil {
				return err
			}
		}
		return nil
	}
	if elementsOnly {
		for i := range results {
			results[i].Tree = ""
			results[i].Locators = nil
		}
	}
	if len(results) == 1 {
		return output.Fprint(w, results[0])
	}
	return output.Fprint(w, results)
}

// reduceAll reduces every input with at most jobs running at once. Results
// keep the input order; the first failure cancels the rest.
func reduceAll(ctx context.Context, cmd *cobra.Command, inputs []string, opts uitree.Options, jobs int, counter *output.TokenCounter) ([]output.ReduceResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]output.ReduceResult, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, source := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), source)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			start := time.Now()
			res, err := uitree.Process(raw, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			for _, w := range res.Warnings {
				logger.Warn("dropped node", zap.String("source", source), zap.String("warning", w.String()))
			}

			r := output.NewReduceResult(source, time.Now().Unix(), res)
			if counter != nil {
				n, exact := counter.Count(res.Text)
				if !exact {
					logger.Debug("token count estimated", zap.String("encoding", counter.Encoding()))
				}
				r.Tokens = n
			}
			logger.Debug("reduced dump",
				zap.String("source", source),
				zap.String("app", res.App),
				zap.Int("parsed", res.Stats.Parsed),
				zap.Int("elements", res.Stats.Elements),
				zap.Duration("elapsed", time.Since(start)),
			)
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
