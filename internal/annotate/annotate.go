// Package annotate draws reduced-tree elements onto device screenshots.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mj1618/uitree/internal/uitree"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelMode controls what text is drawn on each annotated element.
type LabelMode int

const (
	// LabelTags draws the element's tag, e.g. "n12".
	LabelTags LabelMode = iota
	// LabelCoords draws "(x,y)" screen center coordinates.
	LabelCoords
)

// Options configures Annotate.
type Options struct {
	Mode LabelMode
	// Screen is the device screen in the coordinate space of element bounds.
	// When empty, element bounds are taken to be image pixels.
	Screen uitree.Rect
	// Scale resizes the output image; 0 or 1 keeps the original size.
	Scale float64
}

var (
	boxColor     = color.RGBA{R: 255, G: 0, B: 0, A: 100}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Annotate draws a bounding box and label for every element.
// Element bounds are device pixels; they are mapped onto the image using the
// ratio of image size to screen size, which absorbs screenshot downscaling.
func Annotate(img image.Image, elements []uitree.ElementRecord, opts Options) (image.Image, error) {
	if opts.Scale < 0 {
		return nil, fmt.Errorf("invalid scale %v", opts.Scale)
	}
	rgba := ToRGBA(img)
	ib := rgba.Bounds()

	scaleX, scaleY := 1.0, 1.0
	if opts.Screen.Valid() {
		scaleX = float64(ib.Dx()) / float64(opts.Screen.Width())
		scaleY = float64(ib.Dy()) / float64(opts.Screen.Height())
	}

	for _, el := range elements {
		drawElement(rgba, el, opts.Screen, scaleX, scaleY, opts.Mode)
	}

	if opts.Scale == 0 || opts.Scale == 1 {
		return rgba, nil
	}
	w := int(float64(ib.Dx()) * opts.Scale)
	h := int(float64(ib.Dy()) * opts.Scale)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("scale %v leaves an empty image", opts.Scale)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), rgba, ib, draw.Over, nil)
	return dst, nil
}

// ToRGBA converts any image to RGBA.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// Label returns the text drawn for el.
func Label(el uitree.ElementRecord, mode LabelMode) string {
	if mode == LabelCoords {
		x, y := el.Center()
		return fmt.Sprintf("(%d,%d)", x, y)
	}
	return el.ID
}

func drawElement(img *image.RGBA, el uitree.ElementRecord, screen uitree.Rect, scaleX, scaleY float64, mode LabelMode) {
	b := el.Bounds
	x1 := int(float64(b.X1-screen.X1) * scaleX)
	y1 := int(float64(b.Y1-screen.Y1) * scaleY)
	x2 := int(float64(b.X2-screen.X1) * scaleX)
	y2 := int(float64(b.Y2-screen.Y1) * scaleY)

	drawRectangle(img, x1, y1, x2, y2, boxColor)
	drawTextWithOutline(img, Label(el, mode), (x1+x2)/2, (y1+y2)/2, textColor, outlineColor)
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawTextWithOutline centers text on (x, y) with a one-pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	ox := x - width/2
	// Dot is the baseline; shift down so the glyphs straddle y.
	oy := y + face.Ascent/2

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, face, text, ox+dx, oy+dy, outlineColor)
		}
	}
	drawString(img, face, text, ox, oy, textColor)
}

func drawString(img *image.RGBA, face font.Face, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
