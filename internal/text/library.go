package text

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Font engines.
const (
	EngineOpenType = "opentype"
	EngineFreeType = "freetype"
)

// Built-in font resources, usable wherever a font path is expected.
const (
	BuiltinRegular = "builtin:goregular"
	BuiltinBold    = "builtin:gobold"
)

var builtins = map[string][]byte{
	BuiltinRegular: goregular.TTF,
	BuiltinBold:    gobold.TTF,
}

// parsedFont is a font program that can produce sized faces. Implementations
// are safe for concurrent use; the faces they produce are not.
type parsedFont interface {
	newFace(size int) (font.Face, error)
	hasGlyph(r rune) bool
}

type openTypeFont struct {
	f *opentype.Font
}

func (o *openTypeFont) newFace(size int) (font.Face, error) {
	return opentype.NewFace(o.f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72, // 72 DPI: one point per pixel, so Size is the pixel size
		Hinting: font.HintingFull,
	})
}

func (o *openTypeFont) hasGlyph(r rune) bool {
	// nil buffer: sfnt allocates one per call, keeping this concurrency-safe.
	idx, err := o.f.GlyphIndex(nil, r)
	return err == nil && idx != sfnt.GlyphIndex(0)
}

type freeTypeFont struct {
	f *truetype.Font
}

func (t *freeTypeFont) newFace(size int) (font.Face, error) {
	return truetype.NewFace(t.f, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func (t *freeTypeFont) hasGlyph(r rune) bool {
	return t.f.Index(r) != 0
}

// Library parses font resources once and hands out faces. It is safe for
// concurrent use and is meant to be shared by every worker of a batch.
type Library struct {
	engine string

	mu    sync.Mutex
	fonts map[string]parsedFont
}

// NewLibrary returns a library using the given engine. An empty engine
// selects EngineOpenType.
func NewLibrary(engine string) (*Library, error) {
	engine = strings.ToLower(strings.TrimSpace(engine))
	if engine == "" {
		engine = EngineOpenType
	}
	if engine != EngineOpenType && engine != EngineFreeType {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	return &Library{engine: engine, fonts: make(map[string]parsedFont)}, nil
}

// Engine returns the engine name.
func (l *Library) Engine() string { return l.engine }

// Open creates a glyph context for resource at size pixels. The caller owns
// the returned face and must Close it.
func (l *Library) Open(resource string, size int) (*Face, error) {
	if size <= 0 {
		return nil, &FontLoadError{Resource: resource, Size: size, Err: ErrInvalidSize}
	}
	pf, err := l.font(resource)
	if err != nil {
		return nil, &FontLoadError{Resource: resource, Size: size, Err: err}
	}
	ff, err := pf.newFace(size)
	if err != nil {
		return nil, &FontLoadError{Resource: resource, Size: size, Err: err}
	}
	return newFace(resource, size, ff, pf), nil
}

func (l *Library) font(resource string) (parsedFont, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if pf, ok := l.fonts[resource]; ok {
		return pf, nil
	}

	data, ok := builtins[resource]
	if !ok {
		var err error
		data, err = os.ReadFile(resource)
		if err != nil {
			return nil, err
		}
	}

	var pf parsedFont
	switch l.engine {
	case EngineFreeType:
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		pf = &freeTypeFont{f: f}
	default:
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		pf = &openTypeFont{f: f}
	}
	l.fonts[resource] = pf
	return pf, nil
}
