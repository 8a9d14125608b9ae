package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mj1618/uitree/internal/server"
	"github.com/mj1618/uitree/internal/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing uitree tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes reduce, resolve,
elements and diff as tools. Each reduce call opens a session; its tags resolve
against that session's dump until the session expires.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  uitree serve
  uitree serve --transport streamable-http --port 8765 --metrics-addr :9090
  uitree serve --session-ttl 30m`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, streamable-http (default from config)")
	serveCmd.Flags().Int("port", 0, "HTTP port for streamable-http transport (default from config)")
	serveCmd.Flags().Duration("session-ttl", 0, "How long reduce sessions stay resolvable (default from config)")
	serveCmd.Flags().String("metrics-addr", "", "Address serving Prometheus /metrics (empty = disabled)")
}

func runServe(cmd *cobra.Command, args []string) error {
	scfg := server.ConfigFrom(cfg, version.Version)
	flags := cmd.Flags()
	if flags.Changed("transport") {
		scfg.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("port") {
		scfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("session-ttl") {
		scfg.SessionTTL, _ = flags.GetDuration("session-ttl")
	}
	if flags.Changed("metrics-addr") {
		scfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if scfg.SessionTTL <= 0 {
		return fmt.Errorf("--session-ttl must be positive")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(scfg, cfg, logger)
	return srv.Serve(ctx)
}
