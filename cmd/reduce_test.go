package cmd

import (
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mj1618/uitree/internal/output"
	"github.com/mj1618/uitree/internal/uitree"
	"gopkg.in/yaml.v3"
)

func TestReduceStdin(t *testing.T) {
	out, err := execute(t, okDump, "reduce", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var res output.ReduceResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if res.Source != "-" {
		t.Errorf("source: got %q", res.Source)
	}
	if res.App != "com.example.app" {
		t.Errorf("app: got %q", res.App)
	}
	if len(res.Elements) != 1 || res.Elements[0].ID != "n2" {
		t.Errorf("elements: got %+v", res.Elements)
	}
	if _, ok := res.Locators["n2"]; !ok {
		t.Errorf("locator for n2 missing: %v", res.Locators)
	}
	if res.Tokens != 0 {
		t.Errorf("tokens should only be counted with --tokens, got %d", res.Tokens)
	}
}

func TestReduceFilesKeepOrder(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "b.xml", cancelDump)
	writeTemp(t, dir, "a.xml", okDump)

	out, err := execute(t, "", "reduce", filepath.Join(dir, "*.xml"), "--jobs", "2", "--tokens")
	if err != nil {
		t.Fatal(err)
	}
	var results []output.ReduceResult
	if err := yaml.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not a YAML list: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if filepath.Base(results[0].Source) != "a.xml" || filepath.Base(results[1].Source) != "b.xml" {
		t.Errorf("order: got %s, %s", results[0].Source, results[1].Source)
	}
	if len(results[1].Elements) != 2 {
		t.Errorf("b.xml elements: got %d, want 2", len(results[1].Elements))
	}
	for _, r := range results {
		if r.Tokens <= 0 {
			t.Errorf("%s: expected a token count", r.Source)
		}
	}
}

func TestReduceTreeOnly(t *testing.T) {
	out, err := execute(t, okDump, "reduce", "--str-type", "plain_text", "--tree-only")
	if err != nil {
		t.Fatal(err)
	}
	want := "The current APP is com.example.app.:\n    [n2] click ; OK:\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestReduceElementsOnly(t *testing.T) {
	out, err := execute(t, okDump, "reduce", "--elements-only")
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"tree", "locators"} {
		if _, ok := m[key]; ok {
			t.Errorf("%s should be omitted", key)
		}
	}
	if _, ok := m["elements"]; !ok {
		t.Error("elements should be present")
	}
}

func TestReduceErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeTemp(t, dir, "bad.xml", `<hierarchy><node bounds="[0,0][1,1]"></hierarchy>`)

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"malformed dump", "", []string{"reduce", bad}},
		{"missing file", "", []string{"reduce", filepath.Join(dir, "absent.xml")}},
		{"bad level", okDump, []string{"reduce", "--level", "5"}},
		{"bad str-type", okDump, []string{"reduce", "--str-type", "toml"}},
		{"zero jobs", okDump, []string{"reduce", "--jobs", "0"}},
		{"exclusive outputs", okDump, []string{"reduce", "--tree-only", "--elements-only"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.stdin, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dump := writeTemp(t, dir, "screen.xml", okDump)
	reduced, err := execute(t, "", "reduce", dump)
	if err != nil {
		t.Fatal(err)
	}
	locators := writeTemp(t, dir, "reduced.yaml", reduced)

	out, err := execute(t, "", "resolve", "--dump", dump, "--locators", locators, "--tag", "n2", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var res output.ResolveResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !res.OK || res.Target == nil {
		t.Fatalf("got %+v", res)
	}
	if res.Target.X != 200 || res.Target.Y != 150 {
		t.Errorf("center: got (%d,%d), want (200,150)", res.Target.X, res.Target.Y)
	}

	if _, err := execute(t, "", "resolve", "--dump", dump, "--locators", locators, "--tag", "n42"); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, d := range []struct{ name, dump string }{{"before", okDump}, {"after", cancelDump}} {
		out, err := execute(t, d.dump, "reduce", "--elements-only")
		if err != nil {
			t.Fatal(err)
		}
		paths = append(paths, writeTemp(t, dir, d.name+".yaml", out))
	}

	out, err := execute(t, "", "diff", "--before", paths[0], "--after", paths[1])
	if err != nil {
		t.Fatal(err)
	}
	var res output.DiffResult
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("got %d changes, want 2: %+v", len(res.Changes), res.Changes)
	}
	if res.Changes[0].Type != uitree.ChangeChanged || res.Changes[1].Type != uitree.ChangeAdded {
		t.Errorf("types: got %s, %s", res.Changes[0].Type, res.Changes[1].Type)
	}

	out, err = execute(t, "", "diff", "--before", paths[0], "--after", paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "changes: []") {
		t.Errorf("identical inputs should report no changes, got:\n%s", out)
	}
}

func TestAnnotateCommand(t *testing.T) {
	dir := t.TempDir()
	dump := writeTemp(t, dir, "screen.xml", okDump)

	// Half-resolution screenshot of the 1080x1920 screen.
	img := image.NewRGBA(image.Rect(0, 0, 540, 960))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	shot := filepath.Join(dir, "screen.png")
	f, err := os.Create(shot)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	outPath := filepath.Join(dir, "marked.png")
	if _, err := execute(t, "", "annotate", "--dump", dump, "--image", shot, "--out", outPath); err != nil {
		t.Fatal(err)
	}

	f, err = os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	marked, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := marked.Bounds(); b.Dx() != 540 || b.Dy() != 960 {
		t.Errorf("bounds: got %v", b)
	}
	// The button's [100,100] corner lands at (50,50) in the screenshot.
	r, g, b, _ := marked.At(50, 50).RGBA()
	if r == 0xffff && g == 0xffff && b == 0xffff {
		t.Error("expected a box drawn at the button corner")
	}

	if _, err := execute(t, "", "annotate", "--dump", dump, "--image", shot, "--out", outPath, "--label", "ids"); err == nil {
		t.Error("expected error for unsupported label")
	}
}
