package uitree

import (
	"strings"
	"unicode"
)

// wrapperCoverage is the share, in percent, of its parent's width and height
// a node must span to count as a plain wrapper when bounds merging is on.
const wrapperCoverage = 80

// MergeOptions selects the optional merge rules.
type MergeOptions struct {
	UseBounds   bool // merge nodes covering >= 80% of their parent
	MergeSwitch bool // describe checkable nodes as on/off switches instead
}

// Merge folds nodes that add nothing an agent can act on into their parent.
// A merged node's children take its place and its description words that
// the parent lacks are appended to the parent's. Direct children of the
// root are never merged.
func Merge(t *Tree, opts MergeOptions) {
	for _, i := range t.PostOrder() {
		if i == t.root || t.nodes[i].removed {
			continue
		}
		n := &t.nodes[i]
		if opts.MergeSwitch && n.Flag("checkable") {
			n.FuncDesc = switchDescription(n)
			continue
		}
		p := n.Parent
		if p == t.root || !mergeEligible(n, &t.nodes[p], opts) {
			continue
		}
		absorb(&t.nodes[p], n)
		t.Splice(i)
	}
}

func mergeEligible(n, parent *Node, opts MergeOptions) bool {
	if n.Action == "" {
		return true
	}
	return opts.UseBounds && n.Bounds.Covers(parent.Bounds, wrapperCoverage)
}

func switchDescription(n *Node) string {
	state := "off"
	if n.Flag("checked") {
		state = "on"
	}
	return joinNonEmpty(" ", n.FuncDesc, "(switch, currently "+state+")")
}

// absorb merges src's description and, when dst has none, its action into dst.
func absorb(dst, src *Node) {
	dst.FuncDesc = appendNovelWords(dst.FuncDesc, src.FuncDesc)
	if dst.Action == "" {
		dst.Action = src.Action
	}
}

// appendNovelWords appends the words of extra that base does not already
// contain. Words are split on anything that is not a letter or digit and
// compared case-insensitively.
func appendNovelWords(base, extra string) string {
	seen := make(map[string]bool)
	for _, w := range descriptionWords(base) {
		seen[strings.ToLower(w)] = true
	}
	var novel []string
	for _, w := range descriptionWords(extra) {
		key := strings.ToLower(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		novel = append(novel, w)
	}
	if len(novel) == 0 {
		return base
	}
	return joinNonEmpty(" ", base, strings.Join(novel, " "))
}

func descriptionWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
