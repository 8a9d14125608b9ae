package uitree

// DefaultDedupThreshold is the center distance, in pixels, under which two
// sibling elements are treated as the same element.
const DefaultDedupThreshold = 5.0

// Sparsify prunes every node that has no capability flag and no text,
// promoting its children to its parent. Nodes with empty bounds, or bounds
// outside their parent's, are pruned regardless of attributes. Kept nodes
// get their FuncDesc and Action filled in.
//
// Siblings whose centers lie within dedupThreshold of an earlier sibling are
// folded into that sibling. A negative threshold disables the collapse.
func Sparsify(t *Tree, dedupThreshold float64) []InvalidBoundsWarning {
	var warnings []InvalidBoundsWarning
	for _, i := range t.PostOrder() {
		if t.nodes[i].removed {
			continue
		}
		t.collapseNearDuplicates(i, dedupThreshold)
		if i == t.root {
			continue
		}

		n := &t.nodes[i]
		if keepNode(t, i) {
			n.FuncDesc = functionalDescription(n)
			n.Action = actionOf(n)
			continue
		}
		if bs, ok := n.Attrs[AttrBounds]; ok && n.Bounds != InvalidRect && !n.Bounds.Valid() {
			warnings = append(warnings, InvalidBoundsWarning{Class: n.Class(), Bounds: bs, Reason: "empty area"})
		}
		t.spliceContained(i)
	}
	return warnings
}

// keepNode applies the pruning rules in order; the first rule that decides wins.
func keepNode(t *Tree, i int) bool {
	n := &t.nodes[i]
	if !n.Bounds.Valid() {
		return false
	}
	if pb, ok := t.parentBounds(i); ok && !pb.Contains(n.Bounds) {
		return false
	}
	if n.hasCapability() {
		return true
	}
	return n.Text() != "" || n.ContentDesc() != ""
}

// spliceContained splices i out, then keeps splicing any promoted child that
// no longer fits inside its new parent.
func (t *Tree) spliceContained(i int) {
	work := []int{i}
	for len(work) > 0 {
		n := work[0]
		work = work[1:]
		kids := append([]int(nil), t.nodes[n].Children...)
		t.Splice(n)
		for _, c := range kids {
			if pb, ok := t.parentBounds(c); ok && !pb.Contains(t.nodes[c].Bounds) {
				work = append(work, c)
			}
		}
	}
}

// collapseNearDuplicates folds later children of p into the first earlier
// sibling whose center is within threshold pixels.
func (t *Tree) collapseNearDuplicates(p int, threshold float64) {
	if threshold < 0 {
		return
	}
	for {
		dup, keep := t.siblingDuplicate(p, threshold)
		if dup < 0 {
			return
		}
		absorb(&t.nodes[keep], &t.nodes[dup])
		t.Splice(dup)
	}
}

func (t *Tree) siblingDuplicate(p int, threshold float64) (dup, keep int) {
	kids := t.nodes[p].Children
	for j := 1; j < len(kids); j++ {
		bj := t.nodes[kids[j]].Bounds
		if !bj.Valid() {
			continue
		}
		for i := 0; i < j; i++ {
			bi := t.nodes[kids[i]].Bounds
			if bi.Valid() && centerDistance(bi, bj) <= threshold {
				return kids[j], kids[i]
			}
		}
	}
	return -1, -1
}
