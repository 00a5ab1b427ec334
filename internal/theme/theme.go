// Package theme defines the color roles used by the frame compositor and the
// catalog of built-in schemes.
package theme

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/ivlev/quiz2video/internal/logging"
)

// Color is an opaque 8-bit RGB value.
type Color struct {
	R, G, B uint8
}

// RGB builds a Color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scheme maps every semantic role to a concrete color.
type Scheme struct {
	Name string

	Background      Color
	TimerBackground Color

	TimerFill Color
	TimerText Color

	QuestionText    Color
	AnswerText      Color
	AnswerCorrect   Color
	AnswerIncorrect Color

	AnswerButtonNormal    Color
	AnswerButtonCorrect   Color
	AnswerButtonIncorrect Color

	Accent Color
}

// UnknownSchemeError reports a scheme name missing from the catalog. The
// scheme returned alongside it is the fallback and is safe to use.
type UnknownSchemeError struct {
	Name     string
	Fallback string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("theme: unknown color scheme %q, using %q", e.Name, e.Fallback)
}

// Lookup returns the catalog scheme registered under name.
func Lookup(name string) (Scheme, bool) {
	s, ok := catalog[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Resolve is Lookup with fallback: an unknown name yields Fallback together
// with an *UnknownSchemeError.
func Resolve(name string) (Scheme, error) {
	if s, ok := Lookup(name); ok {
		return s, nil
	}
	logging.Logger().Warn("unknown color scheme, falling back",
		"scheme", name, "fallback", Fallback.Name)
	return Fallback, &UnknownSchemeError{Name: name, Fallback: Fallback.Name}
}

// Names lists the catalog in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Palette holds the active scheme of a render session. Activate swaps the
// whole scheme at once; readers never see a partially updated scheme.
type Palette struct {
	active atomic.Pointer[Scheme]
}

// NewPalette returns a palette with s active.
func NewPalette(s Scheme) *Palette {
	p := &Palette{}
	p.Activate(s)
	return p
}

// Activate replaces the active scheme.
func (p *Palette) Activate(s Scheme) {
	p.active.Store(&s)
}

// Current returns a copy of the active scheme, or Fallback if nothing was
// activated yet.
func (p *Palette) Current() Scheme {
	if s := p.active.Load(); s != nil {
		return *s
	}
	return Fallback
}
