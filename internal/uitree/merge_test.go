package uitree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const switchRow = `<hierarchy>
  <node class="android.widget.LinearLayout" bounds="[0,0][1080,400]" clickable="true">
    <node class="android.widget.LinearLayout" bounds="[0,0][1080,400]" clickable="true">
      <node class="android.widget.Switch" bounds="[900,100][1000,200]" checkable="true" checked="%s" text="Wi-Fi" />
    </node>
  </node>
</hierarchy>`

func reducedForMerge(t *testing.T, raw string) *Tree {
	t.Helper()
	tree := mustParse(t, raw)
	Sparsify(tree, DefaultDedupThreshold)
	RemoveOverlap(tree)
	return tree
}

func findByText(tree *Tree, text string) *Node {
	var found *Node
	tree.Walk(func(_ int, n *Node) bool {
		if found == nil && n.Text() == text {
			found = n
		}
		return found == nil
	})
	return found
}

func TestMergeSwitchDescription(t *testing.T) {
	tests := []struct {
		checked string
		want    string
	}{
		{"true", "currently on"},
		{"false", "currently off"},
	}
	for _, tt := range tests {
		t.Run(tt.checked, func(t *testing.T) {
			tree := reducedForMerge(t, strings.Replace(switchRow, "%s", tt.checked, 1))
			before := tree.Len()

			Merge(tree, MergeOptions{MergeSwitch: true})

			sw := findByText(tree, "Wi-Fi")
			require.NotNil(t, sw, "switch must survive merging")
			assert.Contains(t, sw.FuncDesc, "switch")
			assert.Contains(t, sw.FuncDesc, tt.want)
			assert.Equal(t, before, tree.Len())
		})
	}
}

func TestMergeFoldsDescriptionIntoParent(t *testing.T) {
	raw := `<hierarchy>
  <node bounds="[0,0][1080,1920]" scrollable="true">
    <node bounds="[0,0][1080,200]" clickable="true" content-desc="Settings">
      <node bounds="[20,20][500,100]" text="Settings" />
      <node bounds="[20,120][500,180]" text="Network and internet" />
    </node>
  </node>
</hierarchy>`
	tree := reducedForMerge(t, raw)
	Merge(tree, MergeOptions{})

	list := tree.Node(tree.Node(tree.Root()).Children[0])
	require.Len(t, list.Children, 1)
	row := tree.Node(list.Children[0])
	assert.Empty(t, row.Children)
	assert.Equal(t, "Settings Network and internet", row.FuncDesc)
	assert.Equal(t, "click", row.Action)
}

func TestMergeKeepsRootChildren(t *testing.T) {
	tree := reducedForMerge(t, `<hierarchy><node bounds="[0,0][10,10]" text="only" /></hierarchy>`)
	Merge(tree, MergeOptions{UseBounds: true})
	assert.Equal(t, []string{"only"}, childTexts(tree, tree.Root()))
}

func TestMergeUseBoundsFoldsWrappers(t *testing.T) {
	raw := `<hierarchy>
  <node bounds="[0,0][1080,1920]" scrollable="true">
    <node bounds="[0,0][1000,1000]" clickable="true" text="card">
      <node bounds="[0,0][900,900]" clickable="true" text="inner card" />
      <node bounds="[0,950][100,1000]" clickable="true" text="small" />
    </node>
  </node>
</hierarchy>`

	tree := reducedForMerge(t, raw)
	Merge(tree, MergeOptions{})
	card := findByText(tree, "card")
	require.NotNil(t, card)
	assert.Len(t, card.Children, 2)

	tree = reducedForMerge(t, raw)
	Merge(tree, MergeOptions{UseBounds: true})
	card = findByText(tree, "card")
	require.NotNil(t, card)
	require.Len(t, card.Children, 1)
	assert.Equal(t, "small", tree.Node(card.Children[0]).Text())
	assert.Equal(t, "card inner", card.FuncDesc)
}

func TestAppendNovelWords(t *testing.T) {
	tests := []struct {
		base, extra, want string
	}{
		{"", "OK", "OK"},
		{"Cancel", "", "Cancel"},
		{"Wi-Fi", "wi-fi settings", "Wi-Fi settings"},
		{"Save draft", "save Draft", "Save draft"},
		{"Play", "Play, play!", "Play"},
		{"Inbox", "3 unread 3", "Inbox 3 unread"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.extra, func(t *testing.T) {
			assert.Equal(t, tt.want, appendNovelWords(tt.base, tt.extra))
		})
	}
}
