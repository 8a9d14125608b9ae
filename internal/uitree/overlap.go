package uitree

// RemoveOverlap drops background containers that geometrically overlap a
// later sibling. It walks the tree breadth-first. When a node intersects a
// later sibling, the node's descendants that stay clear of that sibling are
// hoisted to the node's parent, just before the node, and the node's subtree
// is removed. Descendants that intersect are searched further if they have
// children and dropped if they are leaves.
//
// Only geometry and document order are considered; paint order is unknown,
// so a later sibling that is visually behind still wins.
func RemoveOverlap(t *Tree) {
	queue := []int{t.root}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if t.nodes[i].removed {
			continue
		}
		if t.nodes[i].Bounds.Valid() {
			if sib := t.laterIntersectingSibling(i); sib >= 0 {
				hoisted := t.clearDescendants(i, t.nodes[sib].Bounds)
				parent := t.nodes[i].Parent
				for _, h := range hoisted {
					t.detach(h)
				}
				t.insertBefore(parent, i, hoisted...)
				t.RemoveSubtree(i)
				queue = append(queue, hoisted...)
				continue
			}
		}
		queue = append(queue, t.nodes[i].Children...)
	}
}

// laterIntersectingSibling returns the first sibling after i, in document
// order, whose bounds intersect i's, or -1.
func (t *Tree) laterIntersectingSibling(i int) int {
	k := t.indexInParent(i)
	if k < 0 {
		return -1
	}
	b := t.nodes[i].Bounds
	siblings := t.nodes[t.nodes[i].Parent].Children
	for _, s := range siblings[k+1:] {
		if sb := t.nodes[s].Bounds; sb.Valid() && b.Intersects(sb) {
			return s
		}
	}
	return -1
}

// clearDescendants collects, in document order, the highest descendants of i
// that do not intersect cover.
func (t *Tree) clearDescendants(i int, cover Rect) []int {
	var out []int
	stack := reversed(t.nodes[i].Children)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch {
		case !t.nodes[c].Bounds.Intersects(cover):
			out = append(out, c)
		case len(t.nodes[c].Children) > 0:
			stack = append(stack, reversed(t.nodes[c].Children)...)
		}
	}
	return out
}

func reversed(ids []int) []int {
	out := make([]int, len(ids))
	for k, id := range ids {
		out[len(ids)-1-k] = id
	}
	return out
}
