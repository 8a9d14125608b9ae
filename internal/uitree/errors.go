package uitree

import (
	"errors"
	"fmt"
)

// ParseError reports a dump that is not well-formed markup. No partial tree
// is ever returned alongside it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse ui dump: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports an unrecognized serialization format.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported str_type %q (use json, plain_text or yaml)", e.Format)
}

// InvalidBoundsWarning records a node whose bounds failed to parse or have
// no area. The node is pruned; processing continues.
type InvalidBoundsWarning struct {
	Class  string `yaml:"class"  json:"class"`
	Bounds string `yaml:"bounds" json:"bounds"`
	Reason string `yaml:"reason" json:"reason"`
}

func (w InvalidBoundsWarning) String() string {
	return fmt.Sprintf("%s bounds %q: %s", w.Class, w.Bounds, w.Reason)
}

var (
	// ErrInvalidLevel is returned for a pipeline level outside 0..3.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrTagCollision is returned when a custom tag generator keeps repeating itself.
	ErrTagCollision = errors.New("tag generator produced duplicate tags")
	// ErrUnknownTag is returned when a tag is missing from a locator map.
	ErrUnknownTag = errors.New("unknown tag")
	// ErrLocatorNotFound is returned when no locator of a tag matches exactly one node.
	ErrLocatorNotFound = errors.New("no locator matches exactly one node")

	// errLocatorAmbiguous marks a path step with no unique match. It is always
	// recovered with a positional step.
	errLocatorAmbiguous = errors.New("locator step is ambiguous")
)
