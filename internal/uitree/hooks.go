package uitree

// OverlapResolver rewrites a sparsified tree in place before merging.
// App-specific resolvers replace the default overlap removal entirely.
type OverlapResolver interface {
	ResolveOverlap(t *Tree)
}

// OverlapResolverFunc adapts a function to OverlapResolver.
type OverlapResolverFunc func(t *Tree)

func (f OverlapResolverFunc) ResolveOverlap(t *Tree) { f(t) }

// DefaultOverlapResolver runs RemoveOverlap.
type DefaultOverlapResolver struct{}

func (DefaultOverlapResolver) ResolveOverlap(t *Tree) { RemoveOverlap(t) }

// Resolvers maps a foreground app identifier (e.g. an Android package name)
// to its resolver. The table is read-only once handed to Process.
type Resolvers map[string]OverlapResolver

// Lookup returns the resolver registered for app, or the default one.
func (r Resolvers) Lookup(app string) OverlapResolver {
	if res, ok := r[app]; ok && res != nil {
		return res
	}
	return DefaultOverlapResolver{}
}

// DropResourceIDs removes the whole subtree of every node whose resource-id
// is listed. It suits apps with known floating overlays.
type DropResourceIDs []string

func (d DropResourceIDs) ResolveOverlap(t *Tree) {
	drop := make(map[string]bool, len(d))
	for _, id := range d {
		if id != "" {
			drop[id] = true
		}
	}
	var doomed []int
	t.Walk(func(i int, n *Node) bool {
		if i != t.root && drop[n.Attr(AttrResourceID)] {
			doomed = append(doomed, i)
			return false
		}
		return true
	})
	for _, i := range doomed {
		t.RemoveSubtree(i)
	}
}
