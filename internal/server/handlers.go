package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/uitree"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// toText serializes a tool result to YAML for the MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func (s *Server) handleReduce(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	raw := StringParam(params, "xml", "")
	if raw == "" {
		return mcp.NewToolResultError("xml is required"), nil
	}

	opts := s.reduce.Options()
	opts.Level = IntParam(params, "level", opts.Level)
	opts.StrType = StringParam(params, "str_type", opts.StrType)
	opts.App = StringParam(params, "app", "")
	opts.UseBounds = BoolParam(params, "use_bounds", opts.UseBounds)
	opts.MergeSwitch = BoolParam(params, "merge_switch", opts.MergeSwitch)
	opts.RemoveSystemBar = BoolParam(params, "remove_system_bar", opts.RemoveSystemBar)

	res, err := uitree.Process([]byte(raw), opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, w := range res.Warnings {
		s.logger.Debug("dropped node", zap.String("warning", w.String()))
	}

	sess := s.sessions.Put("mcp", res)
	tokens, _ := s.tokens.Count(res.Text)
	s.metrics.ObserveReduction(res.Stats.Parsed, res.Stats.Elements, tokens)

	out := output.NewReduceResult(sess.Source, time.Now().Unix(), res)
	out.Session = sess.ID
	out.Tokens = tokens
	// Locators stay server-side; resolve takes a tag instead.
	out.Locators = nil
	return mcp.NewToolResultText(toText(out)), nil
}

func (s *Server) handleResolve(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sess, errRes := s.session(StringParam(params, "session", ""))
	if errRes != nil {
		return errRes, nil
	}
	tag := StringParam(params, "tag", "")
	if tag == "" {
		return mcp.NewToolResultError("tag is required"), nil
	}

	target, err := uitree.Locate(sess.Result.Document, sess.Result.Locators, tag)
	if err != nil {
		return mcp.NewToolResultError(toText(output.ResolveResult{OK: false, Error: err.Error()})), nil
	}
	return mcp.NewToolResultText(toText(output.ResolveResult{OK: true, Target: target})), nil
}

func (s *Server) handleElements(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errRes := s.session(StringParam(request.GetArguments(), "session", ""))
	if errRes != nil {
		return errRes, nil
	}
	return mcp.NewToolResultText(toText(sess.Result.Elements)), nil
}

func (s *Server) handleDiff(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	before, errRes := s.session(StringParam(params, "before", ""))
	if errRes != nil {
		return errRes, nil
	}
	after, errRes := s.session(StringParam(params, "after", ""))
	if errRes != nil {
		return errRes, nil
	}

	changes, err := uitree.DiffElements(before.Result.Elements, after.Result.Elements)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(output.DiffResult{
		Before:  before.ID,
		After:   after.ID,
		Changes: changes,
	})), nil
}

// session looks up id, returning a tool error result when it is missing or expired.
func (s *Server) session(id string) (*Session, *mcp.CallToolResult) {
	if id == "" {
		return nil, mcp.NewToolResultError("session is required")
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, mcp.NewToolResultError(fmt.Sprintf("unknown or expired session %q; call reduce again", id))
	}
	return sess, nil
}
