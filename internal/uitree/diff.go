package uitree

import (
	"fmt"

	"github.com/minio/highwayhash"
)

// ChangeType is the kind of difference between two observations.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// ElementChange is one difference between two element lists. Before is set
// for removed and changed elements, After for added and changed ones.
type ElementChange struct {
	Type    ChangeType           `yaml:"type"              json:"type"`
	Before  *ElementRecord       `yaml:"before,omitempty"  json:"before,omitempty"`
	After   *ElementRecord       `yaml:"after,omitempty"   json:"after,omitempty"`
	Changes map[string][2]string `yaml:"changes,omitempty" json:"changes,omitempty"`
}

var identityKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Identity hashes what makes an element the same element across two
// observations: its primary locator and its action. Tags are not used
// since they are reassigned on every reduction.
func Identity(el ElementRecord) (uint64, error) {
	h, err := highwayhash.New64(identityKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write([]byte(el.Primary + "\x00" + el.Action)); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// DiffElements compares two element lists. Elements sharing an identity are
// paired in document order; a changed pair reports its name and bounds
// differences.
func DiffElements(before, after []ElementRecord) ([]ElementChange, error) {
	pending := make(map[uint64][]int)
	for i, el := range before {
		id, err := Identity(el)
		if err != nil {
			return nil, fmt.Errorf("hash element %s: %w", el.ID, err)
		}
		pending[id] = append(pending[id], i)
	}

	matched := make([]bool, len(before))
	var changes []ElementChange
	for i := range after {
		el := after[i]
		id, err := Identity(el)
		if err != nil {
			return nil, fmt.Errorf("hash element %s: %w", el.ID, err)
		}
		queue := pending[id]
		if len(queue) == 0 {
			changes = append(changes, ElementChange{Type: ChangeAdded, After: &after[i]})
			continue
		}
		j := queue[0]
		pending[id] = queue[1:]
		matched[j] = true
		if diffs := diffRecords(before[j], el); diffs != nil {
			changes = append(changes, ElementChange{
				Type:    ChangeChanged,
				Before:  &before[j],
				After:   &after[i],
				Changes: diffs,
			})
		}
	}

	for j := range before {
		if !matched[j] {
			changes = append(changes, ElementChange{Type: ChangeRemoved, Before: &before[j]})
		}
	}
	return changes, nil
}

func diffRecords(prev, curr ElementRecord) map[string][2]string {
	diffs := make(map[string][2]string)
	if prev.Name != curr.Name {
		diffs["name"] = [2]string{prev.Name, curr.Name}
	}
	if prev.Bounds != curr.Bounds {
		diffs["bounds"] = [2]string{prev.Bounds.String(), curr.Bounds.String()}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
