package uitree

import (
	"strings"
)

// DefaultMergeThreshold is the center distance, in pixels, under which an
// element from the secondary candidate list duplicates a primary one.
const DefaultMergeThreshold = 10.0

// DefaultNameWords bounds the length of an element's human-readable name.
const DefaultNameWords = 10

// ElementRecord is one actionable or readable element of a reduced tree.
type ElementRecord struct {
	ID         string `yaml:"id"               json:"id"`
	Name       string `yaml:"name,omitempty"   json:"name,omitempty"`
	Action     string `yaml:"action,omitempty" json:"action,omitempty"`
	Bounds     Rect   `yaml:"bounds"           json:"bounds"`
	Primary    string `yaml:"primary"          json:"primary"`
	Structural string `yaml:"structural"       json:"structural"`
}

// Center returns the element's tap point.
func (e ElementRecord) Center() (int, int) {
	return e.Bounds.Center()
}

// ExtractElements lists the elements of a reindexed tree in document order.
// Interactive nodes and readable leaves are collected separately, each list
// is deduplicated at dedupThreshold, then the leaves are merged in at
// mergeThreshold so an interactive element always wins over a label at the
// same spot.
func ExtractElements(t *Tree, locators LocatorMap, words int, dedupThreshold, mergeThreshold float64) []ElementRecord {
	var interactive, readable []ElementRecord
	t.Walk(func(i int, n *Node) bool {
		if i == t.root || !n.Bounds.Valid() {
			return true
		}
		rec := ElementRecord{
			ID:         n.Tag,
			Name:       HumanName(n, words),
			Action:     n.Action,
			Bounds:     n.Bounds,
			Primary:    locators[n.Tag].Primary,
			Structural: locators[n.Tag].Structural,
		}
		switch {
		case n.Action != "":
			interactive = append(interactive, rec)
		case len(n.Children) == 0 && n.FuncDesc != "":
			readable = append(readable, rec)
		}
		return true
	})
	return MergeElementLists(
		Dedup(interactive, dedupThreshold),
		Dedup(readable, dedupThreshold),
		mergeThreshold,
	)
}

// Dedup drops every element whose center lies within threshold pixels of
// an element kept before it. Running it twice changes nothing.
func Dedup(elements []ElementRecord, threshold float64) []ElementRecord {
	kept := make([]ElementRecord, 0, len(elements))
	for _, el := range elements {
		if !nearAny(el, kept, threshold) {
			kept = append(kept, el)
		}
	}
	return kept
}

// MergeElementLists appends to primary the secondary elements that are not
// within threshold pixels of any element already kept.
func MergeElementLists(primary, secondary []ElementRecord, threshold float64) []ElementRecord {
	merged := append([]ElementRecord(nil), primary...)
	for _, el := range secondary {
		if !nearAny(el, merged, threshold) {
			merged = append(merged, el)
		}
	}
	return merged
}

func nearAny(el ElementRecord, kept []ElementRecord, threshold float64) bool {
	for _, k := range kept {
		if centerDistance(el.Bounds, k.Bounds) <= threshold {
			return true
		}
	}
	return false
}

// HumanName labels a node from its description, falling back to its short
// class name, truncated to at most words words.
func HumanName(n *Node, words int) string {
	label := n.FuncDesc
	if label == "" {
		label = joinNonEmpty(" ", n.Text(), n.ContentDesc())
	}
	if label == "" {
		label = shortClass(n.Class())
	}
	fields := strings.Fields(label)
	if words > 0 && len(fields) > words {
		fields = fields[:words]
	}
	return strings.Join(fields, " ")
}
