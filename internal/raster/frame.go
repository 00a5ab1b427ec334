// Package raster implements the pixel primitives of the compositor on a
// packed RGB24 buffer.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ivlev/quiz2video/internal/theme"
)

// BytesPerPixel of an RGB24 frame.
const BytesPerPixel = 3

// Frame is an RGB24 pixel buffer: row-major, top-left origin, interleaved
// R, G, B, stride Width*3. Primitives never resize Pix.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// NewFrame allocates a black frame.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Pix:    make([]byte, width*height*BytesPerPixel),
		Width:  width,
		Height: height,
	}
}

// Wrap uses pix as the backing store of a width x height frame.
func Wrap(pix []byte, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid frame size %dx%d", width, height)
	}
	if len(pix) != width*height*BytesPerPixel {
		return nil, fmt.Errorf("raster: buffer holds %d bytes, %dx%d RGB24 needs %d",
			len(pix), width, height, width*height*BytesPerPixel)
	}
	return &Frame{Pix: pix, Width: width, Height: height}, nil
}

// Stride returns the length of a row in bytes.
func (f *Frame) Stride() int { return f.Width * BytesPerPixel }

// Offset returns the index of the first byte of pixel (x, y).
func (f *Frame) Offset(x, y int) int { return (y*f.Width + x) * BytesPerPixel }

// At returns the color of pixel (x, y), which must be in bounds.
func (f *Frame) At(x, y int) theme.Color {
	i := f.Offset(x, y)
	return theme.Color{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2]}
}

// Image copies the frame into an opaque RGBA image, for previews and tests.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := f.Offset(x, y)
			img.SetRGBA(x, y, color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 0xFF})
		}
	}
	return img
}
