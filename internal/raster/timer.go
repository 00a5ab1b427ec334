package raster

import (
	"math"

	"github.com/ivlev/quiz2video/internal/theme"
)

// FillWidth returns the timer fill width for progress on a frame of the
// given width: round(width * clamp(progress, 0, 1)).
func FillWidth(width int, progress float64) int {
	progress = math.Max(0, math.Min(1, progress))
	return int(math.Round(float64(width) * progress))
}

// DrawTimerBar paints the full-width timer track at the top of the frame and
// overlays the left-aligned fill for progress.
func (f *Frame) DrawTimerBar(progress float64, barHeight int, track, fill theme.Color) {
	f.FillRect(0, 0, f.Width, barHeight, track)
	if w := FillWidth(f.Width, progress); w > 0 {
		f.FillRect(0, 0, w, barHeight, fill)
	}
}
