package uitree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for the reduced tree.
type Format string

const (
	FormatJSON      Format = "json"
	FormatPlainText Format = "plain_text"
	FormatYAML      Format = "yaml"
)

// ParseFormat validates a str_type value. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatPlainText, FormatYAML:
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// TreeMap is the ordered nested form of a reduced tree. A leaf maps to an
// empty TreeMap.
type TreeMap = orderedmap.OrderedMap[string, any]

// NodeKey is the key a node is serialized under: "[tag] action ; description",
// or "[tag]" for a bare container. This extends the plain "[tag] description"
// key with the node's action verbs; a node without an action gets exactly
// the plain form.
func NodeKey(n *Node) string {
	desc := joinNonEmpty(" ; ", n.Action, n.FuncDesc)
	if desc == "" {
		return "[" + n.Tag + "]"
	}
	return "[" + n.Tag + "] " + desc
}

// rootKey replaces the key of a root that carries screen rotation with a
// sentence naming the foreground app.
func rootKey(n *Node, app string) string {
	if _, ok := n.Attrs[AttrRotation]; ok {
		return ScreenContext(app)
	}
	return NodeKey(n)
}

// ToMap converts t into nested ordered maps in document order.
func ToMap(t *Tree, app string) *TreeMap {
	top := orderedmap.New[string, any]()
	type frame struct {
		node   int
		parent *TreeMap
	}
	stack := []frame{{node: t.root, parent: top}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[f.node]
		key := NodeKey(n)
		if f.node == t.root {
			key = rootKey(n, app)
		}
		children := orderedmap.New[string, any]()
		f.parent.Set(key, children)
		for k := len(n.Children) - 1; k >= 0; k-- {
			stack = append(stack, frame{node: n.Children[k], parent: children})
		}
	}
	return top
}

// Serialize renders t in the given format.
func Serialize(t *Tree, app string, format Format) (string, error) {
	switch format {
	case FormatJSON, "":
		return serializeJSON(ToMap(t, app))
	case FormatPlainText:
		return serializePlainText(t, app), nil
	case FormatYAML:
		return serializeYAML(ToMap(t, app))
	}
	return "", &UnsupportedFormatError{Format: string(format)}
}

// serializeJSON indents with four spaces and writes leaves as bare keys,
// so the tree reads like nested lists. Keys are written without HTML
// escaping; labels such as "Terms & Conditions" stay verbatim.
func serializeJSON(m *TreeMap) (string, error) {
	w := newJSONTreeWriter()
	if err := w.object(m, 0); err != nil {
		return "", fmt.Errorf("encode tree: %w", err)
	}
	return w.buf.String(), nil
}

type jsonTreeWriter struct {
	buf     bytes.Buffer
	scratch bytes.Buffer
	enc     *json.Encoder
}

func newJSONTreeWriter() *jsonTreeWriter {
	w := &jsonTreeWriter{}
	w.enc = json.NewEncoder(&w.scratch)
	w.enc.SetEscapeHTML(false)
	return w
}

func (w *jsonTreeWriter) object(m *TreeMap, depth int) error {
	if m.Len() == 0 {
		w.buf.WriteString("{}")
		return nil
	}
	indent := strings.Repeat("    ", depth+1)
	w.buf.WriteString("{\n")
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		w.buf.WriteString(indent)
		if err := w.key(pair.Key); err != nil {
			return err
		}
		if child, _ := pair.Value.(*TreeMap); child != nil && child.Len() > 0 {
			w.buf.WriteString(": ")
			if err := w.object(child, depth+1); err != nil {
				return err
			}
		}
		if pair.Next() != nil {
			w.buf.WriteByte(',')
		}
		w.buf.WriteByte('\n')
	}
	w.buf.WriteString(strings.Repeat("    ", depth))
	w.buf.WriteByte('}')
	return nil
}

// key writes s as a quoted JSON string.
func (w *jsonTreeWriter) key(s string) error {
	w.scratch.Reset()
	if err := w.enc.Encode(s); err != nil {
		return err
	}
	w.buf.Write(bytes.TrimSuffix(w.scratch.Bytes(), []byte("\n")))
	return nil
}

func serializePlainText(t *Tree, app string) string {
	var sb strings.Builder
	type frame struct {
		node  int
		depth int
	}
	stack := []frame{{node: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[f.node]
		key := NodeKey(n)
		if f.node == t.root {
			key = rootKey(n, app)
		}
		sb.WriteString(strings.Repeat("    ", f.depth))
		sb.WriteString(key)
		sb.WriteString(":\n")
		for k := len(n.Children) - 1; k >= 0; k-- {
			stack = append(stack, frame{node: n.Children[k], depth: f.depth + 1})
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func serializeYAML(m *TreeMap) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(m)); err != nil {
		return "", fmt.Errorf("encode tree: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode tree: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// yamlNode builds the mapping node for m, keeping insertion order.
func yamlNode(m *TreeMap) *yaml.Node {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key}
		child, _ := pair.Value.(*TreeMap)
		var value *yaml.Node
		if child == nil || child.Len() == 0 {
			value = &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
		} else {
			value = yamlNode(child)
		}
		out.Content = append(out.Content, key, value)
	}
	return out
}
