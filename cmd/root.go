package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/uitree/internal/config"
	"github.com/mj1618/uitree/internal/logging"
	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// cfg and logger are set by the root command before any subcommand runs.
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "uitree",
	Short: "Reduce Android UI hierarchy dumps for LLM agents",
	Long: `uitree turns raw Android UI hierarchy dumps into compact, tagged trees that
fit in a prompt, and maps the tags back to on-screen elements.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before the config")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console, json")
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}
}

// setup loads configuration, builds the logger and selects the output format.
func setup(cmd *cobra.Command, args []string) error {
	flags := rootCmd.PersistentFlags()
	configPath, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	loaded, err := config.NewLoader().
		WithConfigPath(configPath).
		WithDotEnv(envFile).
		Load()
	if err != nil {
		return err
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		loaded.Log.Level = lvl
	}
	if f, _ := flags.GetString("log-format"); f != "" {
		loaded.Log.Format = f
	}
	cfg = loaded
	logger = logging.New(cfg.Log)

	format, _ := flags.GetString("format")
	switch format {
	case "yaml":
		output.OutputFormat = output.FormatYAML
	case "json":
		output.OutputFormat = output.FormatJSON
	default:
		return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
	}
	output.PrettyOutput, _ = flags.GetBool("pretty")
	return nil
}
