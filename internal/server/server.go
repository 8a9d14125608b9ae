// Package server exposes the reducer as Model Context Protocol tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/uitree/internal/config"
	"github.com/mj1618/uitree/internal/output"
	"go.uber.org/zap"
)

// Config holds MCP server configuration.
type Config struct {
	Transport   string
	Port        int
	SessionTTL  time.Duration
	MaxSessions int
	MetricsAddr string
	Version     string
	TokenModel  string
}

// ConfigFrom copies the server section of a loaded configuration.
func ConfigFrom(c *config.Config, version string) Config {
	return Config{
		Transport:   c.Server.Transport,
		Port:        c.Server.Port,
		SessionTTL:  c.Server.SessionTTL,
		MaxSessions: c.Server.MaxSessions,
		MetricsAddr: c.Server.MetricsAddr,
		Version:     version,
		TokenModel:  c.Reduce.TokenModel,
	}
}

// Server wraps the MCP server with the session store and reduction defaults.
type Server struct {
	cfg      Config
	reduce   *config.Config
	sessions *SessionStore
	tokens   *output.TokenCounter
	metrics  *Metrics
	logger   *zap.Logger
	mcp      *mcpserver.MCPServer
}

// New creates and configures a server with all uitree tools registered.
// reduce supplies the defaults for tool arguments that are not given.
func New(cfg Config, reduce *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reduce == nil {
		reduce = config.DefaultConfig()
	}
	s := &Server{
		cfg:      cfg,
		reduce:   reduce,
		sessions: NewSessionStore(cfg.SessionTTL, cfg.MaxSessions),
		tokens:   output.NewTokenCounter(cfg.TokenModel),
		logger:   logger,
	}
	s.metrics = NewMetrics("uitree", s.sessions.Len)
	s.mcp = mcpserver.NewMCPServer(
		"uitree",
		cfg.Version,
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore { return s.sessions }

// Serve starts the MCP server with the configured transport. When a metrics
// address is set, /metrics is served there until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		srv := &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			s.logger.Info("serving metrics", zap.String("addr", s.cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	s.logger.Info("starting MCP server",
		zap.String("transport", s.cfg.Transport),
		zap.Int("port", s.cfg.Port),
		zap.Duration("session_ttl", s.cfg.SessionTTL),
	)
	switch s.cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		err := httpServer.Start(fmt.Sprintf(":%d", s.cfg.Port))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

func (s *Server) registerTools() {
	// reduce
	s.mcp.AddTool(
		mcp.NewTool("reduce",
			mcp.WithDescription("Reduce a raw Android UI hierarchy dump to a compact tree for prompting. Returns the serialized tree, the element list and a session id for later resolve calls."),
			mcp.WithString("xml", mcp.Description("Raw UI hierarchy dump (uiautomator XML)"), mcp.Required()),
			mcp.WithNumber("level", mcp.Description("Stages to run: 1 sparsify, 2 +overlap, 3 +merge (0 = all)")),
			mcp.WithString("str_type", mcp.Description("Tree format: json, plain_text, yaml")),
			mcp.WithString("app", mcp.Description("Foreground app id (default: detected from the dump)")),
			mcp.WithBoolean("use_bounds", mcp.Description("Merge single-child chains by bounds containment")),
			mcp.WithBoolean("merge_switch", mcp.Description("Fold switch state into the surrounding label")),
			mcp.WithBoolean("remove_system_bar", mcp.Description("Accepted for compatibility; ignored")),
		),
		s.instrument("reduce", s.handleReduce),
	)

	// resolve
	s.mcp.AddTool(
		mcp.NewTool("resolve",
			mcp.WithDescription("Resolve a tag from a reduced tree to screen coordinates on the unreduced dump"),
			mcp.WithString("session", mcp.Description("Session id returned by reduce"), mcp.Required()),
			mcp.WithString("tag", mcp.Description("Tag shown in the reduced tree, e.g. n12"), mcp.Required()),
		),
		s.instrument("resolve", s.handleResolve),
	)

	// elements
	s.mcp.AddTool(
		mcp.NewTool("elements",
			mcp.WithDescription("List the interactive and readable elements of a reduced tree"),
			mcp.WithString("session", mcp.Description("Session id returned by reduce"), mcp.Required()),
		),
		s.instrument("elements", s.handleElements),
	)

	// diff
	s.mcp.AddTool(
		mcp.NewTool("diff",
			mcp.WithDescription("Compare the element lists of two reductions of the same screen"),
			mcp.WithString("before", mcp.Description("Earlier session id"), mcp.Required()),
			mcp.WithString("after", mcp.Description("Later session id"), mcp.Required()),
		),
		s.instrument("diff", s.handleDiff),
	)
}

// instrument records duration, outcome and a log line for every tool call.
func (s *Server) instrument(tool string, h mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := h(ctx, request)
		elapsed := time.Since(start)
		failed := err != nil || (res != nil && res.IsError)
		s.metrics.ObserveCall(tool, failed, elapsed)

		fields := []zap.Field{zap.String("tool", tool), zap.Duration("elapsed", elapsed)}
		switch {
		case err != nil:
			s.logger.Error("tool call failed", append(fields, zap.Error(err))...)
		case failed:
			s.logger.Warn("tool call returned error", fields...)
		default:
			s.logger.Debug("tool call", fields...)
		}
		return res, err
	}
}
