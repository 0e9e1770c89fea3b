package processing

import (
	"image"
	"image/color"
	"image/draw"

	"petvision/internal/models"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	ColorCat   = color.RGBA{0, 255, 0, 255}
	ColorDog   = color.RGBA{255, 0, 0, 255}
	ColorOther = color.RGBA{255, 255, 0, 255}
)

// captionOffset is the gap between the caption baseline and the box top.
const captionOffset = 5

// drawMargin limits how far outside the image box coordinates are kept.
// Anything beyond it is invisible anyway.
const drawMargin = 1 << 16

// Renderer burns detection boxes and captions into a copy of an image.
type Renderer struct {
	Thickness int
	Face      font.Face
	Colors    map[string]color.RGBA
	Fallback  color.RGBA
}

func NewRenderer() *Renderer {
	return &Renderer{
		Thickness: 2,
		Face:      basicfont.Face7x13,
		Colors: map[string]color.RGBA{
			models.LabelCat: ColorCat,
			models.LabelDog: ColorDog,
		},
		Fallback: ColorOther,
	}
}

func (r *Renderer) ColorFor(label string) color.RGBA {
	if c, ok := r.Colors[label]; ok {
		return c
	}
	return r.Fallback
}

// Annotate returns a fresh RGBA copy of src with every detection matching mode
// drawn on it, plus the detections that were drawn. src is never modified.
func (r *Renderer) Annotate(src image.Image, dets []models.Detection, mode models.Mode) (*image.RGBA, []models.Detection) {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	drawn := make([]models.Detection, 0, len(dets))
	window := image.Rect(0, 0, bounds.Dx(), bounds.Dy()).Inset(-drawMargin)

	for _, d := range dets {
		if !mode.Matches(d.Label) {
			continue
		}
		drawn = append(drawn, d)

		box := d.Rect().Intersect(window)
		if box.Empty() {
			continue
		}
		box = box.Add(bounds.Min)

		col := r.ColorFor(d.Label)
		drawRect(dst, box, col, r.Thickness)
		r.drawCaption(dst, d.Caption(), image.Pt(box.Min.X, box.Min.Y-captionOffset), col)
	}

	return dst, drawn
}

func (r *Renderer) drawCaption(img *image.RGBA, text string, baseline image.Point, col color.Color) {
	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: r.Face,
		Dot:  fixed.P(baseline.X, baseline.Y),
	}
	dr.DrawString(text)
}

// drawRect strokes the inside of rect. Each edge is clipped to img before it
// is filled, so the cost is bounded by the image size.
func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	if rect.Empty() || thickness <= 0 {
		return
	}

	t := thickness
	if w := rect.Dx(); w > 0 && w < t {
		t = w
	}
	if h := rect.Dy(); h > 0 && h < t {
		t = h
	}

	edges := []image.Rectangle{
		{Min: rect.Min, Max: image.Pt(rect.Max.X, rect.Min.Y+t)},
		{Min: image.Pt(rect.Min.X, rect.Max.Y-t), Max: rect.Max},
		{Min: rect.Min, Max: image.Pt(rect.Min.X+t, rect.Max.Y)},
		{Min: image.Pt(rect.Max.X-t, rect.Min.Y), Max: rect.Max},
	}

	src := image.NewUniform(col)
	bounds := img.Bounds()
	for _, e := range edges {
		e = e.Intersect(bounds)
		if e.Empty() {
			continue
		}
		draw.Draw(img, e, src, image.Point{}, draw.Src)
	}
}
