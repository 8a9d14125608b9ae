package uitree

import (
	"github.com/antchfx/xmlquery"
)

// Node is one UI element held in a Tree's arena. Children and Parent are
// indices into the same arena; the root's Parent is -1.
type Node struct {
	Tag      string            // element name, replaced by a synthetic id on reindex
	Attrs    map[string]string // raw attributes from the dump
	Bounds   Rect
	Children []int
	Parent   int
	FuncDesc string // text and content description, grown by merges
	Action   string // verbs derived from capability flags

	name    string         // original element name
	src     *xmlquery.Node // matching node of the unreduced document
	removed bool
}

// Tree is an index-based UI tree built from one dump. It is not safe for
// concurrent mutation and is discarded after serialization.
type Tree struct {
	nodes []Node
	root  int
	doc   *xmlquery.Node
	raw   []byte
}

// Root returns the index of the root node.
func (t *Tree) Root() int { return t.root }

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node { return &t.nodes[i] }

// Raw returns the dump the tree was parsed from.
func (t *Tree) Raw() []byte { return t.raw }

// Document returns the unreduced parsed document. Locators are evaluated
// against it, never against the reduced tree.
func (t *Tree) Document() *xmlquery.Node { return t.doc }

// Len returns the number of nodes still attached to the tree.
func (t *Tree) Len() int {
	return len(t.PreOrder())
}

// Removed reports whether node i has been detached from the tree.
func (t *Tree) Removed(i int) bool { return t.nodes[i].removed }

// PreOrder lists the attached nodes in document order.
func (t *Tree) PreOrder() []int {
	var order []int
	stack := []int{t.root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, i)
		kids := t.nodes[i].Children
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, kids[k])
		}
	}
	return order
}

// PostOrder lists the attached nodes with every child before its parent.
// The list is a snapshot; callers may mutate the tree while iterating it.
func (t *Tree) PostOrder() []int {
	type frame struct {
		node     int
		expanded bool
	}
	var order []int
	stack := []frame{{node: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.expanded {
			order = append(order, f.node)
			continue
		}
		stack = append(stack, frame{node: f.node, expanded: true})
		kids := t.nodes[f.node].Children
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, frame{node: kids[k]})
		}
	}
	return order
}

// Walk calls fn for every attached node in document order. Returning false
// skips the node's children.
func (t *Tree) Walk(fn func(i int, n *Node) bool) {
	stack := []int{t.root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(i, &t.nodes[i]) {
			continue
		}
		kids := t.nodes[i].Children
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, kids[k])
		}
	}
}

// indexInParent returns i's position among its parent's children, or -1.
func (t *Tree) indexInParent(i int) int {
	p := t.nodes[i].Parent
	if p < 0 {
		return -1
	}
	for k, c := range t.nodes[p].Children {
		if c == i {
			return k
		}
	}
	return -1
}

// Splice removes node i and puts its children at i's former position in
// its parent, in their original order. The root cannot be spliced.
func (t *Tree) Splice(i int) {
	p := t.nodes[i].Parent
	k := t.indexInParent(i)
	if p < 0 || k < 0 {
		return
	}
	kids := t.nodes[i].Children
	siblings := t.nodes[p].Children
	spliced := make([]int, 0, len(siblings)-1+len(kids))
	spliced = append(spliced, siblings[:k]...)
	spliced = append(spliced, kids...)
	spliced = append(spliced, siblings[k+1:]...)
	t.nodes[p].Children = spliced
	for _, c := range kids {
		t.nodes[c].Parent = p
	}
	t.nodes[i].Children = nil
	t.nodes[i].Parent = -1
	t.nodes[i].removed = true
}

// detach unlinks i from its parent without touching i's own children.
func (t *Tree) detach(i int) {
	p := t.nodes[i].Parent
	k := t.indexInParent(i)
	if p < 0 || k < 0 {
		return
	}
	siblings := t.nodes[p].Children
	t.nodes[p].Children = append(siblings[:k:k], siblings[k+1:]...)
	t.nodes[i].Parent = -1
}

// insertBefore attaches ids to parent immediately before the child at.
func (t *Tree) insertBefore(parent, at int, ids ...int) {
	if len(ids) == 0 {
		return
	}
	k := t.indexInParent(at)
	if k < 0 {
		k = len(t.nodes[parent].Children)
	}
	siblings := t.nodes[parent].Children
	merged := make([]int, 0, len(siblings)+len(ids))
	merged = append(merged, siblings[:k]...)
	merged = append(merged, ids...)
	merged = append(merged, siblings[k:]...)
	t.nodes[parent].Children = merged
	for _, id := range ids {
		t.nodes[id].Parent = parent
	}
}

// RemoveSubtree detaches node i and everything below it.
func (t *Tree) RemoveSubtree(i int) {
	if i == t.root {
		return
	}
	t.detach(i)
	stack := []int{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[n].removed = true
		stack = append(stack, t.nodes[n].Children...)
		t.nodes[n].Children = nil
	}
}

// parentBounds returns the bounds of i's parent and whether they can be
// used for containment checks.
func (t *Tree) parentBounds(i int) (Rect, bool) {
	p := t.nodes[i].Parent
	if p < 0 {
		return Rect{}, false
	}
	b := t.nodes[p].Bounds
	return b, b.Valid()
}
