package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/mj1618/uitree/internal/uitree"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

var button = uitree.ElementRecord{
	ID:     "n2",
	Name:   "OK",
	Bounds: uitree.Rect{X1: 0, Y1: 0, X2: 200, Y2: 100},
}

func TestAnnotateMapsScreenToImage(t *testing.T) {
	// Screenshot downscaled 2x relative to the device screen.
	out, err := Annotate(whiteImage(200, 100), []uitree.ElementRecord{button}, Options{
		Screen: uitree.Rect{X2: 400, Y2: 200},
	})
	if err != nil {
		t.Fatal(err)
	}
	rgba := out.(*image.RGBA)

	if got := rgba.RGBAAt(0, 0); got != boxColor {
		t.Errorf("top-left corner: got %v, want box color", got)
	}
	if got := rgba.RGBAAt(99, 49); got != boxColor {
		t.Errorf("bottom-right corner: got %v, want box color", got)
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := rgba.RGBAAt(150, 80); got != white {
		t.Errorf("outside the box should be untouched, got %v", got)
	}
	if got := rgba.RGBAAt(100, 50); got != white {
		t.Errorf("box should end at half the screen size, got %v", got)
	}
}

func TestAnnotateWithoutScreenUsesPixels(t *testing.T) {
	out, err := Annotate(whiteImage(300, 300), []uitree.ElementRecord{button}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	rgba := out.(*image.RGBA)
	if got := rgba.RGBAAt(199, 99); got != boxColor {
		t.Errorf("got %v, want box color at element corner", got)
	}
}

func TestAnnotateClipsOffscreenBoxes(t *testing.T) {
	el := uitree.ElementRecord{ID: "n9", Bounds: uitree.Rect{X1: 500, Y1: 500, X2: 600, Y2: 600}}
	if _, err := Annotate(whiteImage(100, 100), []uitree.ElementRecord{el}, Options{}); err != nil {
		t.Fatal(err)
	}
}

func TestAnnotateScale(t *testing.T) {
	out, err := Annotate(whiteImage(200, 100), nil, Options{Scale: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds(); got.Dx() != 100 || got.Dy() != 50 {
		t.Errorf("scaled bounds: got %v", got)
	}

	if _, err := Annotate(whiteImage(10, 10), nil, Options{Scale: -1}); err == nil {
		t.Error("expected error for negative scale")
	}
	if _, err := Annotate(whiteImage(10, 10), nil, Options{Scale: 0.01}); err == nil {
		t.Error("expected error for a scale that empties the image")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		mode LabelMode
		want string
	}{
		{LabelTags, "n2"},
		{LabelCoords, "(100,50)"},
	}
	for _, tt := range tests {
		if got := Label(button, tt.mode); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
