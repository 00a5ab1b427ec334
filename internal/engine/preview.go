package engine

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ivlev/quiz2video/internal/director"
	"github.com/ivlev/quiz2video/internal/raster"
	"github.com/ivlev/quiz2video/internal/renderer"
)

// Preview renders a single frame of question at elapsed seconds, saves it
// as PNG and returns the element opacities of that frame.
func (p *VideoProject) Preview(path string, question int, elapsed float64) ([]director.ElementOpacity, error) {
	s, err := renderer.NewSession(p.rendererOptions(), p.Palette, p.Library)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	f := raster.NewFrame(p.Config.Video.Width, p.Config.Video.Height)
	if err := s.Render(f, p.Quiz, question, elapsed); err != nil {
		return nil, err
	}

	tl, err := director.NewDirector(p.Config.Animation, p.Config.Video.FPS).GenerateTimeline(p.Quiz)
	if err != nil {
		return nil, err
	}
	if err := writePNG(path, f); err != nil {
		return nil, err
	}
	return tl.Segments[question].Opacities(elapsed), nil
}

func writePNG(path string, f *raster.Frame) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, f.Image()); err != nil {
		out.Close()
		return fmt.Errorf("png: %w", err)
	}
	return out.Close()
}
