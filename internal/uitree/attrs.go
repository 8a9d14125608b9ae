package uitree

import (
	"strings"
)

// Attribute names read from a UI dump.
const (
	AttrClass              = "class"
	AttrText               = "text"
	AttrContentDesc        = "content-desc"
	AttrContentDescription = "content-description"
	AttrResourceID         = "resource-id"
	AttrBounds             = "bounds"
	AttrPackage            = "package"
	AttrRotation           = "rotation"
	AttrIndex              = "index"
	AttrEnabled            = "enabled"
)

// CapabilityFlags are the boolean attributes that keep a node on their own,
// whatever its text.
var CapabilityFlags = []string{
	"checkable",
	"checked",
	"clickable",
	"focusable",
	"scrollable",
	"long-clickable",
	"password",
	"selected",
}

// actionVerbs maps capability flags to the verb an agent sees, in output order.
var actionVerbs = []struct {
	flag string
	verb string
}{
	{"clickable", "click"},
	{"scrollable", "scroll"},
	{"long-clickable", "long-click"},
	{"checkable", "check"},
}

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// Flag reports whether a boolean-as-string attribute is "true".
func (n *Node) Flag(name string) bool {
	return strings.EqualFold(strings.TrimSpace(n.Attrs[name]), "true")
}

// Class returns the widget class, falling back to the element name.
func (n *Node) Class() string {
	if c := n.Attrs[AttrClass]; c != "" {
		return c
	}
	return n.name
}

// Text returns the trimmed text attribute.
func (n *Node) Text() string {
	return strings.TrimSpace(n.Attrs[AttrText])
}

// ContentDesc returns the trimmed content description. Both the Android
// ("content-desc") and long ("content-description") spellings are accepted.
func (n *Node) ContentDesc() string {
	if d := n.Attrs[AttrContentDesc]; d != "" {
		return strings.TrimSpace(d)
	}
	return strings.TrimSpace(n.Attrs[AttrContentDescription])
}

func (n *Node) hasCapability() bool {
	for _, f := range CapabilityFlags {
		if n.Flag(f) {
			return true
		}
	}
	return false
}

// functionalDescription concatenates trimmed text and content description.
func functionalDescription(n *Node) string {
	return joinNonEmpty(" ", n.Text(), n.ContentDesc())
}

// actionOf lists the verbs for every capability set on n. A node that is
// only focusable gets "focusable".
func actionOf(n *Node) string {
	var verbs []string
	for _, av := range actionVerbs {
		if n.Flag(av.flag) {
			verbs = append(verbs, av.verb)
		}
	}
	if len(verbs) == 0 && n.Flag("focusable") {
		return "focusable"
	}
	return strings.Join(verbs, ", ")
}

// shortClass returns the last dotted component of a widget class,
// e.g. "android.widget.Button" -> "Button".
func shortClass(class string) string {
	if i := strings.LastIndex(class, "."); i >= 0 {
		return class[i+1:]
	}
	return class
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
