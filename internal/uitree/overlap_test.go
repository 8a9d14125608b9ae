package uitree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveOverlapDropsBackground(t *testing.T) {
	raw := `<hierarchy>
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]">
    <node class="android.view.View" bounds="[0,0][1080,1920]" clickable="false" text="background" />
    <node class="android.widget.Button" bounds="[100,100][200,200]" clickable="true" text="front" />
  </node>
</hierarchy>`
	tree := mustParse(t, raw)
	frame := tree.Node(tree.Root()).Children[0]

	RemoveOverlap(tree)

	assert.Equal(t, []string{"front"}, childTexts(tree, frame))
	button := tree.Node(frame).Children[0]
	assert.Equal(t, frame, tree.Node(button).Parent)
}

func TestRemoveOverlapHoistsClearDescendants(t *testing.T) {
	raw := `<hierarchy>
  <node bounds="[0,0][1080,1920]">
    <node bounds="[0,0][1080,1920]" text="sheet">
      <node bounds="[500,500][600,600]" text="clear" />
      <node bounds="[0,0][1080,300]" text="header">
        <node bounds="[700,10][800,90]" text="nested clear" />
        <node bounds="[120,120][150,150]" text="covered" />
      </node>
    </node>
    <node bounds="[100,100][200,200]" text="dialog" />
  </node>
</hierarchy>`
	tree := mustParse(t, raw)
	frame := tree.Node(tree.Root()).Children[0]

	RemoveOverlap(tree)

	assert.Equal(t, []string{"clear", "nested clear", "dialog"}, childTexts(tree, frame))
}

func TestRemoveOverlapIgnoresTouchingSiblings(t *testing.T) {
	raw := `<hierarchy>
  <node bounds="[0,0][100,100]" text="left" />
  <node bounds="[100,0][200,100]" text="right" />
</hierarchy>`
	tree := mustParse(t, raw)
	RemoveOverlap(tree)
	assert.Equal(t, []string{"left", "right"}, childTexts(tree, tree.Root()))
}

func TestDropResourceIDs(t *testing.T) {
	tree := mustParse(t, settingsDump)
	resolver := Resolvers{
		"com.android.settings": DropResourceIDs{"com.android.settings:id/ad", ""},
	}.Lookup("com.android.settings")

	resolver.ResolveOverlap(tree)

	frame := tree.Node(tree.Root()).Children[0]
	require.Len(t, tree.Node(frame).Children, 2)
	assert.Equal(t, 6, tree.Len())
}

func TestResolversFallBackToDefault(t *testing.T) {
	var r Resolvers
	_, ok := r.Lookup("com.unknown").(DefaultOverlapResolver)
	assert.True(t, ok)

	called := false
	r = Resolvers{"com.app": OverlapResolverFunc(func(*Tree) { called = true })}
	r.Lookup("com.app").ResolveOverlap(mustParse(t, okDump))
	assert.True(t, called)
}
