package text

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is returned when a pixel size is not positive.
	ErrInvalidSize = errors.New("text: pixel size must be positive")

	// ErrUnknownEngine is returned for an engine name other than
	// EngineOpenType or EngineFreeType.
	ErrUnknownEngine = errors.New("text: unknown font engine")

	// ErrFacesInUse is returned by Pool.Close when faces were still acquired.
	ErrFacesInUse = errors.New("text: pool closed with faces still acquired")
)

// FontLoadError reports that a glyph context could not be created for a font
// resource at a pixel size. It is not retried.
type FontLoadError struct {
	Resource string
	Size     int
	Err      error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("text: cannot load font %q at %dpx: %v", e.Resource, e.Size, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }
