package uitree

import (
	"fmt"
)

// maxTagRetries bounds how often a custom TagFunc may repeat a tag before
// Reindex gives up.
const maxTagRetries = 8

// TagFunc produces the next synthetic tag. It is called once per node.
type TagFunc func() string

// CounterTags returns a TagFunc yielding "n1", "n2", ... Tags are unique
// within one reduction and carry no meaning across reductions.
func CounterTags() TagFunc {
	next := 0
	return func() string {
		next++
		return fmt.Sprintf("n%d", next)
	}
}

// Reindex gives every attached node a fresh tag and builds the locator map.
// Locators are derived from the unreduced document so they resolve against
// the live screen, not against the reduced tree.
func Reindex(t *Tree, tags TagFunc) (LocatorMap, error) {
	if tags == nil {
		tags = CounterTags()
	}
	order := t.PreOrder()
	used := make(map[string]bool, len(order))
	for _, i := range order {
		tag, err := uniqueTag(tags, used)
		if err != nil {
			return nil, err
		}
		t.nodes[i].Tag = tag
	}

	b := newLocatorBuilder(t.doc)
	locators := make(LocatorMap, len(order))
	for _, i := range order {
		n := &t.nodes[i]
		locators[n.Tag] = Locator{
			Primary:    b.Primary(n.src),
			Structural: b.Structural(n.src),
			Neighbors:  t.neighborTags(i),
		}
	}
	return locators, nil
}

func uniqueTag(tags TagFunc, used map[string]bool) (string, error) {
	for attempt := 0; attempt < maxTagRetries; attempt++ {
		tag := tags()
		if tag != "" && !used[tag] {
			used[tag] = true
			return tag, nil
		}
	}
	return "", ErrTagCollision
}

// neighborTags lists i's parent, siblings and children, in that order.
func (t *Tree) neighborTags(i int) []string {
	var tags []string
	p := t.nodes[i].Parent
	if p >= 0 {
		tags = append(tags, t.nodes[p].Tag)
		for _, s := range t.nodes[p].Children {
			if s != i {
				tags = append(tags, t.nodes[s].Tag)
			}
		}
	}
	for _, c := range t.nodes[i].Children {
		tags = append(tags, t.nodes[c].Tag)
	}
	return tags
}
