package uitree

import (
	"fmt"

	"github.com/antchfx/xmlquery"
)

// MaxLevel is the highest pipeline level; it runs every stage.
const MaxLevel = 3

// Options configures one reduction.
type Options struct {
	// Level is how many reduction stages run: 1 sparsify, 2 adds overlap
	// resolution, 3 adds merging. 0 runs them all.
	Level int
	// StrType is the serialization format: json, plain_text or yaml.
	StrType string
	// RemoveSystemBar is accepted for compatibility and currently ignored.
	RemoveSystemBar bool
	UseBounds       bool
	MergeSwitch     bool
	// App is the foreground app id. When empty it is read from the dump's
	// package attributes.
	App string

	DedupThreshold float64
	MergeThreshold float64
	NameWords      int

	Resolvers Resolvers
	Tags      TagFunc
}

// DefaultOptions runs every stage and serializes to JSON.
func DefaultOptions() Options {
	return Options{
		Level:          0,
		StrType:        string(FormatJSON),
		DedupThreshold: DefaultDedupThreshold,
		MergeThreshold: DefaultMergeThreshold,
		NameWords:      DefaultNameWords,
	}
}

// Stats counts attached nodes after each stage that ran.
type Stats struct {
	Parsed     int `yaml:"parsed"            json:"parsed"`
	Sparsified int `yaml:"sparsified"        json:"sparsified"`
	Overlap    int `yaml:"overlap,omitempty" json:"overlap,omitempty"`
	Merged     int `yaml:"merged,omitempty"  json:"merged,omitempty"`
	Elements   int `yaml:"elements"          json:"elements"`
}

// Result is the complete output of a reduction.
type Result struct {
	Text     string                 `yaml:"text"               json:"text"`
	Locators LocatorMap             `yaml:"locators"           json:"locators"`
	Elements []ElementRecord        `yaml:"elements"           json:"elements"`
	Warnings []InvalidBoundsWarning `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	App      string                 `yaml:"app,omitempty"      json:"app,omitempty"`
	Screen   Rect                   `yaml:"screen,omitempty"   json:"screen"`
	Stats    Stats                  `yaml:"stats"              json:"stats"`

	// Document is the unreduced dump that Locators resolve against.
	Document *xmlquery.Node `yaml:"-" json:"-"`
}

// Process parses raw, reduces it and serializes the result. Either a
// complete Result or an error is returned, never both.
func Process(raw []byte, opts Options) (*Result, error) {
	if opts.Level < 0 || opts.Level > MaxLevel {
		return nil, fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidLevel, opts.Level, MaxLevel)
	}
	level := opts.Level
	if level == 0 {
		level = MaxLevel
	}
	format, err := ParseFormat(opts.StrType)
	if err != nil {
		return nil, err
	}

	t, warnings, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	var stats Stats
	stats.Parsed = t.Len()

	app := opts.App
	if app == "" {
		app = DetectApp(t)
	}
	screen := ScreenBounds(t)

	warnings = append(warnings, Sparsify(t, opts.DedupThreshold)...)
	stats.Sparsified = t.Len()

	if level >= 2 {
		opts.Resolvers.Lookup(app).ResolveOverlap(t)
		stats.Overlap = t.Len()
	}
	if level >= 3 {
		Merge(t, MergeOptions{UseBounds: opts.UseBounds, MergeSwitch: opts.MergeSwitch})
		stats.Merged = t.Len()
	}

	locators, err := Reindex(t, opts.Tags)
	if err != nil {
		return nil, err
	}
	text, err := Serialize(t, app, format)
	if err != nil {
		return nil, err
	}
	elements := ExtractElements(t, locators, opts.NameWords, opts.DedupThreshold, opts.MergeThreshold)
	stats.Elements = len(elements)

	return &Result{
		Text:     text,
		Locators: locators,
		Elements: elements,
		Warnings: warnings,
		App:      app,
		Screen:   screen,
		Stats:    stats,
		Document: t.doc,
	}, nil
}
