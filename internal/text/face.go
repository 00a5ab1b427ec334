package text

import (
	"image"
	"image/color"

	"github.com/ivlev/quiz2video/internal/logging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Coverage is an 8-bit coverage bitmap, row-major, Width*Height bytes.
type Coverage struct {
	Pix    []uint8
	Width  int
	Height int
}

// At returns the coverage at (x, y) inside the bitmap.
func (c Coverage) At(x, y int) uint8 {
	return c.Pix[y*c.Width+x]
}

// Glyph is one positioned bitmap of a run. PenX is the pen offset from the
// start of the run; Left and Top are the bitmap bearings relative to the pen
// and the baseline (Top grows upwards).
type Glyph struct {
	Rune   rune
	Bitmap Coverage
	PenX   int
	Left   int
	Top    int
}

// Run is a left-to-right sequence of glyphs. Advance is the total pen
// advance in pixels. Glyphs without ink (spaces) advance the pen but are not
// listed.
type Run struct {
	Glyphs  []Glyph
	Advance int
}

// Face is a glyph context: one font at one pixel size. A Face is not safe for
// concurrent use.
type Face struct {
	resource string
	size     int
	face     font.Face
	src      parsedFont
	ascent   int
	descent  int
	closed   bool
}

func newFace(resource string, size int, ff font.Face, src parsedFont) *Face {
	m := ff.Metrics()
	return &Face{
		resource: resource,
		size:     size,
		face:     ff,
		src:      src,
		ascent:   m.Ascent.Ceil(),
		descent:  m.Descent.Ceil(),
	}
}

// Resource returns the font resource the face was opened from.
func (f *Face) Resource() string { return f.resource }

// Size returns the pixel size.
func (f *Face) Size() int { return f.size }

// Ascent returns the distance from the baseline to the top of the em box,
// in whole pixels.
func (f *Face) Ascent() int { return f.ascent }

// Descent returns the distance from the baseline to the bottom of the em box,
// in whole pixels (positive).
func (f *Face) Descent() int { return f.descent }

// Measure returns the total advance of s in pixels. Runes the font does not
// map are ignored.
func (f *Face) Measure(s string) int {
	width := 0
	for _, r := range s {
		if !f.src.hasGlyph(r) {
			continue
		}
		adv, ok := f.face.GlyphAdvance(r)
		if !ok {
			continue
		}
		width += adv.Floor()
	}
	return width
}

// Shape rasterizes s into a glyph run. Runes without a glyph are skipped.
func (f *Face) Shape(s string) Run {
	var run Run
	pen := 0
	for _, r := range s {
		if !f.src.hasGlyph(r) {
			logging.Logger().Debug("glyph missing, skipped", "rune", string(r), "font", f.resource)
			continue
		}
		dr, mask, maskp, adv, ok := f.face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			logging.Logger().Debug("glyph rasterization failed, skipped", "rune", string(r), "font", f.resource)
			continue
		}
		if !dr.Empty() {
			run.Glyphs = append(run.Glyphs, Glyph{
				Rune:   r,
				Bitmap: copyCoverage(dr, mask, maskp),
				PenX:   pen,
				Left:   dr.Min.X,
				Top:    -dr.Min.Y,
			})
		}
		pen += adv.Floor()
	}
	run.Advance = pen
	return run
}

// Close releases the backend face. Further calls are no-ops.
func (f *Face) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.face.Close()
}

// copyCoverage detaches the mask from the backend, which reuses its mask
// buffer between Glyph calls.
func copyCoverage(dr image.Rectangle, mask image.Image, maskp image.Point) Coverage {
	w, h := dr.Dx(), dr.Dy()
	c := Coverage{Pix: make([]uint8, w*h), Width: w, Height: h}
	if a, ok := mask.(*image.Alpha); ok {
		for y := 0; y < h; y++ {
			off := a.PixOffset(maskp.X, maskp.Y+y)
			copy(c.Pix[y*w:(y+1)*w], a.Pix[off:off+w])
		}
		return c
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.Pix[y*w+x] = color.AlphaModel.Convert(mask.At(maskp.X+x, maskp.Y+y)).(color.Alpha).A
		}
	}
	return c
}
