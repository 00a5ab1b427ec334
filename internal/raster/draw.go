package raster

import (
	"image"
	"image/color"

	"github.com/ivlev/quiz2video/internal/text"
	"github.com/ivlev/quiz2video/internal/theme"
)

// Fill sets every pixel to c.
func (f *Frame) Fill(c theme.Color) {
	if len(f.Pix) < BytesPerPixel {
		return
	}
	f.Pix[0], f.Pix[1], f.Pix[2] = c.R, c.G, c.B
	// Doubling copy: each pass copies the already-filled prefix.
	for n := BytesPerPixel; n < len(f.Pix); n *= 2 {
		copy(f.Pix[n:], f.Pix[:n])
	}
}

// clip intersects the rectangle (x, y, w, h) with the frame.
func (f *Frame) clip(x, y, w, h int) (x0, y0, x1, y1 int) {
	x0, y0 = max(x, 0), max(y, 0)
	x1, y1 = min(x+w, f.Width), min(y+h, f.Height)
	return x0, y0, x1, y1
}

// FillRect paints an opaque axis-aligned rectangle. Parts outside the frame
// are clipped silently.
func (f *Frame) FillRect(x, y, w, h int, c theme.Color) {
	x0, y0, x1, y1 := f.clip(x, y, w, h)
	for py := y0; py < y1; py++ {
		i := f.Offset(x0, py)
		for px := x0; px < x1; px++ {
			f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.R, c.G, c.B
			i += BytesPerPixel
		}
	}
}

// FillRoundedRect blends a rounded rectangle with the given opacity. The
// radius is clamped to half the shorter side. Corners are quarter circles
// with a hard edge: a corner pixel is inside when its squared distance to
// the corner's circle center is at most radius².
func (f *Frame) FillRoundedRect(x, y, w, h, radius int, c theme.Color, alpha float64) {
	if w <= 0 || h <= 0 || alpha <= 0 {
		return
	}
	radius = max(min(radius, w/2, h/2), 0)

	x0, y0, x1, y1 := f.clip(x, y, w, h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			if insideRounded(px, py, x, y, w, h, radius) {
				f.BlendPixel(f.Offset(px, py), c, alpha)
			}
		}
	}
}

func insideRounded(px, py, x, y, w, h, r int) bool {
	var cx, cy int
	switch {
	case px < x+r:
		cx = x + r
	case px >= x+w-r:
		cx = x + w - r - 1
	default:
		return true
	}
	switch {
	case py < y+r:
		cy = y + r
	case py >= y+h-r:
		cy = y + h - r - 1
	default:
		return true
	}
	dx, dy := px-cx, py-cy
	return dx*dx+dy*dy <= r*r
}

// BlendPixel mixes c into the pixel starting at byte index i:
// out = c*alpha + existing*(1-alpha), truncated toward zero. alpha <= 0
// leaves the pixel alone, alpha >= 1 overwrites it.
func (f *Frame) BlendPixel(i int, c theme.Color, alpha float64) {
	switch {
	case alpha <= 0:
		return
	case alpha >= 1:
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.R, c.G, c.B
		return
	}
	a := float32(alpha)
	f.Pix[i] = mix(c.R, f.Pix[i], a)
	f.Pix[i+1] = mix(c.G, f.Pix[i+1], a)
	f.Pix[i+2] = mix(c.B, f.Pix[i+2], a)
}

// mix works in float32 and truncates.
func mix(src, dst uint8, a float32) uint8 {
	v := float32(src)*a + float32(dst)*(1-a)
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}

// CompositeRun blends a glyph run whose pen starts at (penX, penY), penY
// being the baseline. Each covered pixel uses alpha coverage/255*alpha.
// Pixels outside the frame are skipped.
func (f *Frame) CompositeRun(run text.Run, penX, penY int, c theme.Color, alpha float64) {
	if alpha <= 0 {
		return
	}
	for _, g := range run.Glyphs {
		ox := penX + g.PenX + g.Left
		oy := penY - g.Top
		bm := g.Bitmap
		for row := 0; row < bm.Height; row++ {
			py := oy + row
			if py < 0 || py >= f.Height {
				continue
			}
			for col := 0; col < bm.Width; col++ {
				px := ox + col
				if px < 0 || px >= f.Width {
					continue
				}
				cov := bm.At(col, row)
				if cov == 0 {
					continue
				}
				f.BlendPixel(f.Offset(px, py), c, float64(float32(cov)/255*float32(alpha)))
			}
		}
	}
}

// CompositeStencil paints c over every dark pixel of img (luma below half),
// with img's top-left corner at (x, y). Light pixels are left untouched.
func (f *Frame) CompositeStencil(img image.Image, x, y int, c theme.Color, alpha float64) {
	if img == nil || alpha <= 0 {
		return
	}
	b := img.Bounds()
	for sy := b.Min.Y; sy < b.Max.Y; sy++ {
		py := y + sy - b.Min.Y
		if py < 0 || py >= f.Height {
			continue
		}
		for sx := b.Min.X; sx < b.Max.X; sx++ {
			px := x + sx - b.Min.X
			if px < 0 || px >= f.Width {
				continue
			}
			if color.GrayModel.Convert(img.At(sx, sy)).(color.Gray).Y < 0x80 {
				f.BlendPixel(f.Offset(px, py), c, alpha)
			}
		}
	}
}
