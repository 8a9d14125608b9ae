package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mj1618/uitree/internal/uitree"
	"gopkg.in/yaml.v3"
)

// Format represents the envelope output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ReduceResult is the output of the `reduce` command for one dump.
type ReduceResult struct {
	Source   string                        `yaml:"source"             json:"source"`
	Session  string                        `yaml:"session,omitempty"  json:"session,omitempty"`
	App      string                        `yaml:"app,omitempty"      json:"app,omitempty"`
	TS       int64                         `yaml:"ts"                 json:"ts"`
	Tree     string                        `yaml:"tree,omitempty"     json:"tree,omitempty"`
	Tokens   int                           `yaml:"tokens,omitempty"   json:"tokens,omitempty"`
	Locators uitree.LocatorMap             `yaml:"locators,omitempty" json:"locators,omitempty"`
	Elements []uitree.ElementRecord        `yaml:"elements"           json:"elements"`
	Warnings []uitree.InvalidBoundsWarning `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Stats    uitree.Stats                  `yaml:"stats"              json:"stats"`
}

// ResolveResult is the output of the `resolve` command.
type ResolveResult struct {
	OK     bool           `yaml:"ok"               json:"ok"`
	Target *uitree.Target `yaml:"target,omitempty" json:"target,omitempty"`
	Error  string         `yaml:"error,omitempty"  json:"error,omitempty"`
}

// DiffResult is the output of the `diff` command.
type DiffResult struct {
	Before  string                 `yaml:"before"  json:"before"`
	After   string                 `yaml:"after"   json:"after"`
	Changes []uitree.ElementChange `yaml:"changes" json:"changes"`
}

// NewReduceResult builds the envelope for one reduced dump.
func NewReduceResult(source string, ts int64, res *uitree.Result) ReduceResult {
	return ReduceResult{
		Source:   source,
		App:      res.App,
		TS:       ts,
		Tree:     res.Text,
		Locators: res.Locators,
		Elements: res.Elements,
		Warnings: res.Warnings,
		Stats:    res.Stats,
	}
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(os.Stdout, v)
}

// Fprint serializes v to w in the current output format.
func Fprint(w io.Writer, v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		return WriteJSON(w, v, PrettyOutput)
	case FormatYAML:
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// WriteJSON serializes v to w as JSON.
// If pretty is true, uses indentation; otherwise single-line.
func WriteJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// WriteYAML serializes v to w as YAML.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
