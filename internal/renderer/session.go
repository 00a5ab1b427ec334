package renderer

import (
	"github.com/ivlev/quiz2video/internal/text"
	"github.com/ivlev/quiz2video/internal/theme"
)

// Session is the per-worker rendering state: a compositor with its own face
// pool. Sessions share the font library and the palette.
type Session struct {
	*Compositor
	pool *text.Pool
}

// NewSession prepares a worker's compositor.
func NewSession(opts Options, palette *theme.Palette, lib *text.Library) (*Session, error) {
	pool := text.NewPool(lib)
	c, err := New(opts, palette, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Session{Compositor: c, pool: pool}, nil
}

// Close releases the session's glyph contexts.
func (s *Session) Close() error {
	return s.pool.Close()
}
