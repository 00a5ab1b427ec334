package renderer

import "fmt"

// OutOfRangeError is returned when the requested question does not exist.
// Nothing is written to the frame.
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("renderer: question index %d out of range [0, %d)", e.Index, e.Len)
}

// RenderError aborts a frame because a resource it needs was unavailable.
// Callers must not treat the frame as a valid image.
type RenderError struct {
	Question int
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("renderer: question %d: %v", e.Question, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
