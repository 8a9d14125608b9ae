package uitree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExtractElements(t *testing.T) {
	tree, locators := reindexed(t, settingsDump)
	elements := ExtractElements(tree, locators, DefaultNameWords, DefaultDedupThreshold, DefaultMergeThreshold)

	require.Len(t, elements, 4)
	var ids, names []string
	for _, el := range elements {
		ids = append(ids, el.ID)
		names = append(names, el.Name)
	}
	// interactive elements come first, readable leaves after
	assert.Equal(t, []string{"n3", "n4", "n2", "n5"}, ids)
	assert.Equal(t, []string{"Wi-Fi", "Switch", "Network & internet", "Sponsored"}, names)

	sw := elements[1]
	assert.Equal(t, "click, check", sw.Action)
	assert.Equal(t, `//*[@resource-id="android:id/switch_widget"]`, sw.Primary)
	x, y := sw.Center()
	assert.Equal(t, 970, x)
	assert.Equal(t, 300, y)
}

func TestDedupKeepsFirstOfNearPair(t *testing.T) {
	elements := []ElementRecord{
		{ID: "a", Bounds: Rect{100, 100, 200, 200}},
		{ID: "b", Bounds: Rect{103, 100, 203, 200}},
		{ID: "c", Bounds: Rect{300, 100, 400, 200}},
	}
	got := Dedup(elements, DefaultDedupThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestDedupIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(0, 30).Draw(rt, "count")
		elements := make([]ElementRecord, count)
		for i := range elements {
			x := rapid.IntRange(0, 60).Draw(rt, "x")
			y := rapid.IntRange(0, 60).Draw(rt, "y")
			elements[i] = ElementRecord{Bounds: Rect{x, y, x + 20, y + 20}}
		}
		threshold := float64(rapid.IntRange(0, 15).Draw(rt, "threshold"))

		once := Dedup(elements, threshold)
		twice := Dedup(once, threshold)
		if len(once) != len(twice) {
			rt.Fatalf("second pass removed %d more elements", len(once)-len(twice))
		}
		for i := range once {
			if once[i] != twice[i] {
				rt.Fatalf("element %d changed on second pass", i)
			}
		}
	})
}

func TestMergeElementListsPrefersPrimary(t *testing.T) {
	buttons := []ElementRecord{{ID: "button", Bounds: Rect{0, 0, 100, 100}}}
	labels := []ElementRecord{
		{ID: "label", Bounds: Rect{8, 0, 108, 100}},
		{ID: "far", Bounds: Rect{500, 500, 600, 600}},
	}
	got := MergeElementLists(buttons, labels, DefaultMergeThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "button", got[0].ID)
	assert.Equal(t, "far", got[1].ID)
}

func TestNearDuplicateClickablesYieldOneElement(t *testing.T) {
	raw := `<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]" clickable="false">
    <node class="android.widget.Button" bounds="[100,100][200,200]" clickable="true" text="First" />
    <node class="android.widget.Button" bounds="[103,100][203,200]" clickable="true" text="Second" />
  </node>
</hierarchy>`
	res, err := Process([]byte(raw), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Elements, 1)
	assert.Equal(t, Rect{100, 100, 200, 200}, res.Elements[0].Bounds)
	assert.Equal(t, "First Second", res.Elements[0].Name)
}

func TestHumanName(t *testing.T) {
	tests := []struct {
		name  string
		node  Node
		words int
		want  string
	}{
		{"func_desc", Node{FuncDesc: "Send message"}, 10, "Send message"},
		{"class_fallback", Node{Attrs: map[string]string{AttrClass: "android.widget.ImageButton"}}, 10, "ImageButton"},
		{"truncated", Node{FuncDesc: "one two three four five"}, 3, "one two three"},
		{"unbounded", Node{FuncDesc: "one two three"}, 0, "one two three"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanName(&tt.node, tt.words))
		})
	}
}
