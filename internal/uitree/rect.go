package uitree

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rect is an axis-aligned screen rectangle in device pixels.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// InvalidRect is assigned to nodes whose bounds cannot be parsed.
var InvalidRect = Rect{-1, -1, -1, -1}

// boundsRe matches the uiautomator bounds form "[x1,y1][x2,y2]".
var boundsRe = regexp.MustCompile(`^\[\s*(-?\d+)\s*,\s*(-?\d+)\s*\]\[\s*(-?\d+)\s*,\s*(-?\d+)\s*\]$`)

// ParseBounds parses a "[x1,y1][x2,y2]" string. On failure it returns
// InvalidRect together with the error.
func ParseBounds(s string) (Rect, error) {
	m := boundsRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return InvalidRect, fmt.Errorf("invalid bounds %q: expected [x1,y1][x2,y2]", s)
	}
	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return InvalidRect, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		v[i] = n
	}
	return Rect{v[0], v[1], v[2], v[3]}, nil
}

// Valid reports whether the rectangle has positive width and height.
func (r Rect) Valid() bool {
	return r.X2 > r.X1 && r.Y2 > r.Y1
}

func (r Rect) Width() int  { return r.X2 - r.X1 }
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Center returns the integer tap point of the rectangle.
func (r Rect) Center() (int, int) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Contains reports whether o lies fully inside r (edges inclusive).
func (r Rect) Contains(o Rect) bool {
	return o.X1 >= r.X1 && o.Y1 >= r.Y1 && o.X2 <= r.X2 && o.Y2 <= r.Y2
}

// Intersects reports whether r and o share any area. Touching edges do not count.
func (r Rect) Intersects(o Rect) bool {
	return r.X1 < o.X2 && r.X2 > o.X1 && r.Y1 < o.Y2 && r.Y2 > o.Y1
}

// Covers reports whether r spans at least pct percent of both the width
// and the height of o.
func (r Rect) Covers(o Rect, pct int) bool {
	if !r.Valid() || !o.Valid() {
		return false
	}
	return r.Width()*100 >= o.Width()*pct && r.Height()*100 >= o.Height()*pct
}

// XYWH converts to the [x, y, width, height] form used for drawing.
func (r Rect) XYWH() [4]int {
	return [4]int{r.X1, r.Y1, r.Width(), r.Height()}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.X1, r.Y1, r.X2, r.Y2)
}

// centerDistance is the Euclidean distance between the centers of a and b.
func centerDistance(a, b Rect) float64 {
	ax := float64(a.X1+a.X2) / 2
	ay := float64(a.Y1+a.Y2) / 2
	bx := float64(b.X1+b.X2) / 2
	by := float64(b.Y1+b.Y2) / 2
	return math.Hypot(ax-bx, ay-by)
}

func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rect) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBounds(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Rect) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

func (r *Rect) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseBounds(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
