package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/uitree"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// stdinArg names standard input as a dump source.
const stdinArg = "-"

// expandInputs resolves file arguments and glob patterns to a list of dump
// sources. No arguments means standard input.
func expandInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{stdinArg}, nil
	}
	var inputs []string
	stdinSeen := false
	for _, arg := range args {
		if arg == stdinArg {
			if stdinSeen {
				return nil, fmt.Errorf("standard input given more than once")
			}
			stdinSeen = true
			inputs = append(inputs, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// Not a pattern, or a pattern without matches; let the read report it.
			inputs = append(inputs, arg)
			continue
		}
		sort.Strings(matches)
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

// readInput reads one dump source.
func readInput(stdin io.Reader, source string) ([]byte, error) {
	if source == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	return data, nil
}

// loadEnvelopes reads reduce output, either a single envelope or a list.
// JSON output parses too since it is valid YAML.
func loadEnvelopes(path string) ([]output.ReduceResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reduce output: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if data[0] == '[' || bytes.HasPrefix(data, []byte("- ")) {
		var list []output.ReduceResult
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return list, nil
	}
	var one output.ReduceResult
	if err := yaml.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []output.ReduceResult{one}, nil
}

// pickEnvelope selects the envelope for source, or the only one when source is empty.
func pickEnvelope(envs []output.ReduceResult, source string) (output.ReduceResult, error) {
	if source == "" {
		if len(envs) != 1 {
			return output.ReduceResult{}, fmt.Errorf("reduce output holds %d results; choose one with --source", len(envs))
		}
		return envs[0], nil
	}
	for _, e := range envs {
		if e.Source == source {
			return e, nil
		}
	}
	return output.ReduceResult{}, fmt.Errorf("no result for source %q", source)
}

// addReduceFlags registers the flags that mirror uitree.Options.
func addReduceFlags(cmd *cobra.Command) {
	cmd.Flags().Int("level", 0, "Stages to run: 1 sparsify, 2 +overlap, 3 +merge (0 = all)")
	cmd.Flags().String("str-type", "", "Tree format: json, plain_text, yaml (default from config)")
	cmd.Flags().String("app", "", "Foreground app id (default: detected from the dump)")
	cmd.Flags().Bool("use-bounds", false, "Merge single-child chains by bounds containment")
	cmd.Flags().Bool("merge-switch", false, "Fold switch state into the surrounding label")
	cmd.Flags().Bool("remove-system-bar", false, "Accepted for compatibility; ignored")
}

// reduceOptions starts from the configured defaults and applies any flags
// the user set explicitly.
func reduceOptions(cmd *cobra.Command) uitree.Options {
	opts := cfg.Options()
	flags := cmd.Flags()
	if flags.Changed("level") {
		opts.Level, _ = flags.GetInt("level")
	}
	if flags.Changed("str-type") {
		opts.StrType, _ = flags.GetString("str-type")
	}
	opts.App, _ = flags.GetString("app")
	if flags.Changed("use-bounds") {
		opts.UseBounds, _ = flags.GetBool("use-bounds")
	}
	if flags.Changed("merge-switch") {
		opts.MergeSwitch, _ = flags.GetBool("merge-switch")
	}
	if flags.Changed("remove-system-bar") {
		opts.RemoveSystemBar, _ = flags.GetBool("remove-system-bar")
	}
	return opts
}
