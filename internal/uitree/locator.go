package uitree

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"gopkg.in/yaml.v3"
)

// Locator re-finds one element in the unreduced dump.
//
// On the wire a Locator is the triple [primary, structural, neighbors].
type Locator struct {
	Primary    string   // unique resource-id query, or parent path + positional step
	Structural string   // root-to-node path of unique or positional steps
	Neighbors  []string // parent, sibling and child tags, for tracing only
}

// LocatorMap maps every tag of one reduction to its locator.
type LocatorMap map[string]Locator

func (l Locator) MarshalJSON() ([]byte, error) {
	neighbors := l.Neighbors
	if neighbors == nil {
		neighbors = []string{}
	}
	return json.Marshal([]interface{}{l.Primary, l.Structural, neighbors})
}

func (l *Locator) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("locator: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("locator: expected [primary, structural, neighbors], got %d items", len(raw))
	}
	if err := json.Unmarshal(raw[0], &l.Primary); err != nil {
		return fmt.Errorf("locator primary: %w", err)
	}
	if err := json.Unmarshal(raw[1], &l.Structural); err != nil {
		return fmt.Errorf("locator structural: %w", err)
	}
	l.Neighbors = nil
	if len(raw) > 2 {
		if err := json.Unmarshal(raw[2], &l.Neighbors); err != nil {
			return fmt.Errorf("locator neighbors: %w", err)
		}
	}
	return nil
}

func (l Locator) MarshalYAML() (interface{}, error) {
	neighbors := l.Neighbors
	if neighbors == nil {
		neighbors = []string{}
	}
	return []interface{}{l.Primary, l.Structural, neighbors}, nil
}

func (l *Locator) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) < 2 {
		return fmt.Errorf("locator: expected [primary, structural, neighbors] at line %d", value.Line)
	}
	if err := value.Content[0].Decode(&l.Primary); err != nil {
		return err
	}
	if err := value.Content[1].Decode(&l.Structural); err != nil {
		return err
	}
	l.Neighbors = nil
	if len(value.Content) > 2 {
		return value.Content[2].Decode(&l.Neighbors)
	}
	return nil
}

// docIndex counts attribute values over the whole unreduced document so
// uniqueness checks cost one map lookup.
type docIndex struct {
	tags        map[string]int
	resourceIDs map[string]int
	texts       map[string]int
	descs       map[string]int
	classes     map[string]int
}

func newDocIndex(doc *xmlquery.Node) *docIndex {
	idx := &docIndex{
		tags:        make(map[string]int),
		resourceIDs: make(map[string]int),
		texts:       make(map[string]int),
		descs:       make(map[string]int),
		classes:     make(map[string]int),
	}
	stack := []*xmlquery.Node{rootElement(doc)}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		idx.tags[n.Data]++
		for _, a := range n.Attr {
			switch a.Name.Local {
			case AttrResourceID:
				idx.resourceIDs[a.Value]++
			case AttrText:
				idx.texts[a.Value]++
			case AttrContentDesc, AttrContentDescription:
				idx.descs[a.Name.Local+"="+a.Value]++
			case AttrClass:
				idx.classes[a.Value]++
			}
		}
		stack = append(stack, elementChildren(n)...)
	}
	return idx
}

// locatorBuilder derives locators for nodes of one document, memoizing
// primary paths so each ancestor chain is built once.
type locatorBuilder struct {
	idx     *docIndex
	primary map[*xmlquery.Node]string
}

func newLocatorBuilder(doc *xmlquery.Node) *locatorBuilder {
	return &locatorBuilder{
		idx:     newDocIndex(doc),
		primary: make(map[*xmlquery.Node]string),
	}
}

// Primary returns a unique resource-id query when one exists, otherwise the
// parent's primary locator extended with a positional step.
func (b *locatorBuilder) Primary(n *xmlquery.Node) string {
	var chain []*xmlquery.Node
	base := ""
	for cur := n; cur != nil; cur = elementParent(cur) {
		if p, ok := b.primary[cur]; ok {
			base = p
			break
		}
		if rid := attrOf(cur, AttrResourceID); rid != "" && b.idx.resourceIDs[rid] == 1 {
			base = "//*[@resource-id=" + xpathLiteral(rid) + "]"
			b.primary[cur] = base
			break
		}
		if elementParent(cur) == nil {
			base = "/" + cur.Data
			b.primary[cur] = base
			break
		}
		chain = append(chain, cur)
	}
	for k := len(chain) - 1; k >= 0; k-- {
		base += "/" + positionalStep(chain[k])
		b.primary[chain[k]] = base
	}
	return base
}

// Structural walks from n to the root, choosing at each level the first
// unique step among tag, resource-id, text, content description and class,
// or a positional step when none is unique.
func (b *locatorBuilder) Structural(n *xmlquery.Node) string {
	var segs []string
	for cur := n; cur != nil; cur = elementParent(cur) {
		step, err := b.uniqueStep(cur)
		if err != nil {
			step = positionalStep(cur)
		}
		segs = append(segs, step)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "//" + strings.Join(segs, "/")
}

func (b *locatorBuilder) uniqueStep(n *xmlquery.Node) (string, error) {
	if b.idx.tags[n.Data] == 1 {
		return n.Data, nil
	}
	if rid := attrOf(n, AttrResourceID); rid != "" && b.idx.resourceIDs[rid] == 1 {
		return "*[@resource-id=" + xpathLiteral(rid) + "]", nil
	}
	if text := attrOf(n, AttrText); text != "" && b.idx.texts[text] == 1 {
		return "*[@text=" + xpathLiteral(text) + "]", nil
	}
	for _, name := range []string{AttrContentDesc, AttrContentDescription} {
		if d := attrOf(n, name); d != "" && b.idx.descs[name+"="+d] == 1 {
			return "*[@" + name + "=" + xpathLiteral(d) + "]", nil
		}
	}
	if class := attrOf(n, AttrClass); class != "" && b.idx.classes[class] == 1 {
		return "*[@class=" + xpathLiteral(class) + "]", nil
	}
	return "", errLocatorAmbiguous
}

// positionalStep selects n among its siblings by class and 1-based index.
// Nodes without a class attribute are selected by element name instead.
func positionalStep(n *xmlquery.Node) string {
	class := attrOf(n, AttrClass)
	pos := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type != xmlquery.ElementNode {
			continue
		}
		if class == "" {
			if s.Data == n.Data {
				pos++
			}
		} else if attrOf(s, AttrClass) == class {
			pos++
		}
	}
	if class == "" {
		return fmt.Sprintf("%s[%d]", n.Data, pos)
	}
	return fmt.Sprintf("*[@class=%s][%d]", xpathLiteral(class), pos)
}

func attrOf(n *xmlquery.Node, name string) string {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so values holding both quote kinds are built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}

// Resolve evaluates a locator against an unreduced document.
func Resolve(doc *xmlquery.Node, locator string) ([]*xmlquery.Node, error) {
	expr, err := xpath.Compile(locator)
	if err != nil {
		return nil, fmt.Errorf("compile locator %q: %w", locator, err)
	}
	return xmlquery.QuerySelectorAll(doc, expr), nil
}

// Target is where a resolved element sits on the live screen.
type Target struct {
	Tag    string `yaml:"tag"    json:"tag"`
	Bounds Rect   `yaml:"bounds" json:"bounds"`
	X      int    `yaml:"x"      json:"x"`
	Y      int    `yaml:"y"      json:"y"`
	Via    string `yaml:"via"    json:"via"` // "primary" or "structural"
}

// Locate resolves tag against doc, trying the primary locator first and the
// structural one when the primary does not match exactly one node.
func Locate(doc *xmlquery.Node, locators LocatorMap, tag string) (*Target, error) {
	loc, ok := locators[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}
	for _, c := range []struct {
		via  string
		expr string
	}{{"primary", loc.Primary}, {"structural", loc.Structural}} {
		if c.expr == "" {
			continue
		}
		nodes, err := Resolve(doc, c.expr)
		if err != nil {
			return nil, err
		}
		if len(nodes) != 1 {
			continue
		}
		b, err := ParseBounds(attrOf(nodes[0], AttrBounds))
		if err != nil {
			return nil, fmt.Errorf("locate %s: %w", tag, err)
		}
		x, y := b.Center()
		return &Target{Tag: tag, Bounds: b, X: x, Y: y, Via: c.via}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrLocatorNotFound, tag)
}
