package uitree

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// settingsDump is a small Android screen: a toolbar, a wrapper holding a
// Wi-Fi switch row, and an ad banner.
const settingsDump = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node index="0" class="android.widget.FrameLayout" package="com.android.settings" bounds="[0,0][1080,1920]" clickable="false" text="" content-desc="">
    <node index="0" class="android.widget.TextView" package="com.android.settings" resource-id="com.android.settings:id/title" bounds="[40,60][600,140]" text="Network &amp; internet" />
    <node index="1" class="android.widget.LinearLayout" package="com.android.settings" bounds="[0,200][1080,400]" clickable="true" text="">
      <node index="0" class="android.widget.TextView" package="com.android.settings" bounds="[40,240][700,320]" text="Wi-Fi" />
      <node index="1" class="android.widget.Switch" package="com.android.settings" resource-id="android:id/switch_widget" bounds="[900,250][1040,350]" checkable="true" checked="true" clickable="true" />
    </node>
    <node index="2" class="android.widget.ImageView" package="com.android.settings" resource-id="com.android.settings:id/ad" bounds="[0,1700][1080,1900]" content-desc="Sponsored" />
  </node>
</hierarchy>`

// okDump is a root, a bare wrapper and one clickable button.
const okDump = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" package="com.example.app" bounds="[0,0][1080,1920]" clickable="false" text="" content-desc="">
    <node class="android.widget.Button" package="com.example.app" bounds="[100,100][300,200]" clickable="true" text="OK" content-desc="" />
  </node>
</hierarchy>`

func mustParse(t *testing.T, raw string) *Tree {
	t.Helper()
	tree, _, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

// childTexts returns the text attribute of each child of i.
func childTexts(tree *Tree, i int) []string {
	var out []string
	for _, c := range tree.Node(i).Children {
		out = append(out, tree.Node(c).Text())
	}
	return out
}

// genNode is one node of a generated dump.
type genNode struct {
	bounds    string
	clickable bool
	text      string
	children  []int
}

// drawDump draws a random nested dump. Node 0 is the single child of the
// hierarchy root and every later node hangs off an earlier one.
func drawDump(t *rapid.T) []byte {
	count := rapid.IntRange(1, 24).Draw(t, "nodes")
	nodes := make([]genNode, count)
	for i := range nodes {
		x1 := rapid.IntRange(0, 1000).Draw(t, "x1")
		y1 := rapid.IntRange(0, 1800).Draw(t, "y1")
		w := rapid.IntRange(-2, 600).Draw(t, "w")
		h := rapid.IntRange(-2, 600).Draw(t, "h")
		nodes[i].bounds = fmt.Sprintf("[%d,%d][%d,%d]", x1, y1, x1+w, y1+h)
		nodes[i].clickable = rapid.Bool().Draw(t, "clickable")
		if rapid.Bool().Draw(t, "labelled") {
			nodes[i].text = fmt.Sprintf("label %d", i)
		}
		if i > 0 {
			p := rapid.IntRange(0, i-1).Draw(t, "parent")
			nodes[p].children = append(nodes[p].children, i)
		}
	}

	var sb strings.Builder
	sb.WriteString(`<hierarchy rotation="0">`)
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i < 0 {
			sb.WriteString(`</node>`)
			continue
		}
		n := nodes[i]
		fmt.Fprintf(&sb, `<node index="%d" class="android.view.View" resource-id="id/n%d" bounds="%s" clickable="%t" text="%s">`,
			i, i, n.bounds, n.clickable, n.text)
		stack = append(stack, -1)
		for k := len(n.children) - 1; k >= 0; k-- {
			stack = append(stack, n.children[k])
		}
	}
	sb.WriteString(`</hierarchy>`)
	return []byte(sb.String())
}
