package renderer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/quiz2video/internal/config"
	"github.com/ivlev/quiz2video/internal/quiz"
	"github.com/ivlev/quiz2video/internal/raster"
	"github.com/ivlev/quiz2video/internal/text"
	"github.com/ivlev/quiz2video/internal/theme"
)

const (
	testWidth  = 400
	testHeight = 600
)

func testOptions() Options {
	return Options{
		Layout: config.Layout{
			QuestionFontSize:  32,
			QuestionY:         150,
			AnswerFontSize:    24,
			AnswerYStart:      250,
			AnswerSpacing:     80,
			ButtonMargin:      20,
			ButtonHeight:      60,
			ButtonRadius:      10,
			ButtonTextPadding: 15,
			TimerBarHeight:    20,
		},
		Animation: config.Animation{
			QuestionFadeDuration: 0.5,
			AnswerFadeDuration:   0.3,
			AnswerDelayBetween:   0.3,
		},
		FontPath: text.BuiltinRegular,
	}
}

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		Timing: quiz.Timing{QuestionDuration: 10, RevealDuration: 3},
		Questions: []quiz.Question{{
			Text:    "Capital of France?",
			Answers: []string{"Berlin", "Paris", "Rome"},
			Correct: quiz.CorrectSet{1},
		}},
	}
}

func newCompositor(t *testing.T, opts Options, scheme theme.Scheme) *Compositor {
	t.Helper()
	lib, err := text.NewLibrary(text.EngineOpenType)
	if err != nil {
		t.Fatal(err)
	}
	pool := text.NewPool(lib)
	t.Cleanup(func() { pool.Close() })
	c, err := New(opts, theme.NewPalette(scheme), pool)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func render(t *testing.T, c *Compositor, q *quiz.Quiz, elapsed float64) *raster.Frame {
	t.Helper()
	f := raster.NewFrame(testWidth, testHeight)
	if err := c.Render(f, q, 0, elapsed); err != nil {
		t.Fatalf("Render(%.2f): %v", elapsed, err)
	}
	return f
}

// buttonProbe is a pixel inside button i that no label glyph reaches.
func buttonProbe(opts Options, i int) (x, y int) {
	l := opts.Layout
	return l.ButtonMargin + 5, l.AnswerYStart + i*l.AnswerSpacing + l.ButtonHeight/2
}

func TestRenderIsDeterministic(t *testing.T) {
	q := testQuiz()
	for _, elapsed := range []float64{0, 0.25, 0.7, 1.05, 5, 10, 12.5} {
		a := render(t, newCompositor(t, testOptions(), theme.Classic), q, elapsed)
		c := newCompositor(t, testOptions(), theme.Classic)
		b := render(t, c, q, elapsed)
		again := render(t, c, q, elapsed)
		if !bytes.Equal(a.Pix, b.Pix) || !bytes.Equal(b.Pix, again.Pix) {
			t.Errorf("elapsed %.2f: frames differ", elapsed)
		}
	}
}

func TestRenderOverwritesPreviousContent(t *testing.T) {
	c := newCompositor(t, testOptions(), theme.Classic)
	q := testQuiz()
	want := render(t, c, q, 2)

	dirty := raster.NewFrame(testWidth, testHeight)
	dirty.Fill(theme.RGB(1, 2, 3))
	if err := c.Render(dirty, q, 0, 2); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(want.Pix, dirty.Pix) {
		t.Error("frame depends on previous buffer content")
	}
}

func TestTimerProgressIsMonotonic(t *testing.T) {
	c := newCompositor(t, testOptions(), theme.Classic)
	q := testQuiz()
	fill := theme.Classic.TimerFill

	prev := -1
	for _, elapsed := range []float64{0, 1, 2.5, 4.99, 5, 7.3, 9.9, 10, 11, 13} {
		f := render(t, c, q, elapsed)
		width := 0
		for x := 0; x < f.Width; x++ {
			if f.At(x, 0) == fill {
				width++
			}
		}
		if width < prev {
			t.Fatalf("elapsed %.2f: fill width %d after %d", elapsed, width, prev)
		}
		if want := raster.FillWidth(testWidth, elapsed/q.Timing.QuestionDuration); elapsed <= 10 && width != want {
			t.Errorf("elapsed %.2f: fill width %d, want %d", elapsed, width, want)
		}
		prev = width
	}
	if prev != testWidth {
		t.Errorf("final fill width %d, want %d", prev, testWidth)
	}
}

func TestRevealHighlightsButtons(t *testing.T) {
	opts := testOptions()
	c := newCompositor(t, opts, theme.Classic)
	q := testQuiz()

	tests := []struct {
		elapsed float64
		want    []theme.Color
	}{
		{5, []theme.Color{theme.Classic.AnswerButtonNormal, theme.Classic.AnswerButtonNormal, theme.Classic.AnswerButtonNormal}},
		{9.99, []theme.Color{theme.Classic.AnswerButtonNormal, theme.Classic.AnswerButtonNormal, theme.Classic.AnswerButtonNormal}},
		{10, []theme.Color{theme.Classic.AnswerButtonIncorrect, theme.Classic.AnswerButtonCorrect, theme.Classic.AnswerButtonIncorrect}},
		{12, []theme.Color{theme.Classic.AnswerButtonIncorrect, theme.Classic.AnswerButtonCorrect, theme.Classic.AnswerButtonIncorrect}},
	}
	for _, tt := range tests {
		f := render(t, c, q, tt.elapsed)
		for i, want := range tt.want {
			x, y := buttonProbe(opts, i)
			if got := f.At(x, y); got != want {
				t.Errorf("elapsed %.2f answer %d: button %v, want %v", tt.elapsed, i, got, want)
			}
		}
	}
}

func TestRevealWithSeveralCorrectAnswers(t *testing.T) {
	opts := testOptions()
	c := newCompositor(t, opts, theme.Classic)
	q := testQuiz()
	q.Questions[0].Correct = quiz.CorrectSet{0, 2}

	f := render(t, c, q, 10)
	want := []theme.Color{theme.Classic.AnswerButtonCorrect, theme.Classic.AnswerButtonIncorrect, theme.Classic.AnswerButtonCorrect}
	for i, w := range want {
		x, y := buttonProbe(opts, i)
		if got := f.At(x, y); got != w {
			t.Errorf("answer %d: %v, want %v", i, got, w)
		}
	}
}

func TestAnswersBeforeStartDrawNothing(t *testing.T) {
	opts := testOptions()
	c := newCompositor(t, opts, theme.Classic)
	// Answer 0 starts at 0.5, answer 1 at 0.8, answer 2 at 1.1.
	f := render(t, c, testQuiz(), 0.6)
	bg := theme.Classic.Background

	rowTop := func(i int) int { return opts.Layout.AnswerYStart + i*opts.Layout.AnswerSpacing }
	for y := rowTop(1); y < rowTop(3); y++ {
		for x := 0; x < f.Width; x++ {
			if got := f.At(x, y); got != bg {
				t.Fatalf("pixel (%d,%d) = %v before its answer started", x, y, got)
			}
		}
	}

	x, y := buttonProbe(opts, 0)
	if got := f.At(x, y); got == bg {
		t.Error("answer 0 should be partially visible")
	}
}

func TestButtonOpacityFollowsAnswer(t *testing.T) {
	opts := testOptions()
	c := newCompositor(t, opts, theme.Classic)
	q := testQuiz()
	x, y := buttonProbe(opts, 0)

	half := render(t, c, q, 0.65).At(x, y) // answer 0 at opacity 0.5
	full := render(t, c, q, 2).At(x, y)
	bg := theme.Classic.Background
	if full != theme.Classic.AnswerButtonNormal {
		t.Fatalf("full opacity button %v", full)
	}
	between := func(v, a, b uint8) bool { return (v >= a && v <= b) || (v >= b && v <= a) }
	if half == full || half == bg ||
		!between(half.R, bg.R, full.R) || !between(half.G, bg.G, full.G) || !between(half.B, bg.B, full.B) {
		t.Errorf("half opacity button %v not between %v and %v", half, bg, full)
	}
}

func TestQuestionIsCentered(t *testing.T) {
	opts := testOptions()
	c := newCompositor(t, opts, theme.Classic)
	q := testQuiz()
	q.Questions[0].Text = "AB"
	f := render(t, c, q, 0.5) // question fully visible, answers not started

	face, err := c.fonts.Acquire(opts.FontPath, opts.Layout.QuestionFontSize)
	if err != nil {
		t.Fatal(err)
	}
	defer c.fonts.Release(face)

	want := raster.NewFrame(testWidth, testHeight)
	want.Fill(theme.Classic.Background)
	originX := (testWidth - face.Measure("AB")) / 2
	want.CompositeRun(face.Shape("AB"), originX, opts.Layout.QuestionY, theme.Classic.QuestionText, 1)

	ink := 0
	for y := opts.Layout.TimerBarHeight; y < opts.Layout.AnswerYStart; y++ {
		for x := 0; x < f.Width; x++ {
			got, w := f.At(x, y), want.At(x, y)
			if got != w {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, w)
			}
			if w != theme.Classic.Background {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Fatal("question drew nothing")
	}
}

func TestOutOfRangeLeavesFrameUntouched(t *testing.T) {
	c := newCompositor(t, testOptions(), theme.Classic)
	q := testQuiz()

	for _, index := range []int{-1, 1, 7} {
		f := raster.NewFrame(testWidth, testHeight)
		f.Fill(theme.RGB(9, 8, 7))
		before := bytes.Clone(f.Pix)

		err := c.Render(f, q, index, 1)
		var oor *OutOfRangeError
		if !errors.As(err, &oor) || oor.Index != index || oor.Len != 1 {
			t.Errorf("index %d: err = %v", index, err)
		}
		if !bytes.Equal(before, f.Pix) {
			t.Errorf("index %d: frame modified", index)
		}
	}
}

func TestFontFailureLeavesFrameUntouched(t *testing.T) {
	opts := testOptions()
	opts.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	c := newCompositor(t, opts, theme.Classic)

	f := raster.NewFrame(testWidth, testHeight)
	f.Fill(theme.RGB(9, 8, 7))
	before := bytes.Clone(f.Pix)

	err := c.Render(f, testQuiz(), 0, 1)
	var re *RenderError
	var fe *text.FontLoadError
	if !errors.As(err, &re) || !errors.As(err, &fe) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
	if !bytes.Equal(before, f.Pix) {
		t.Error("frame modified after font failure")
	}
}

func TestRenderReleasesFaces(t *testing.T) {
	opts := testOptions()
	c := newCompositor(t, opts, theme.Classic)
	render(t, c, testQuiz(), 3)
	if n := c.fonts.Refs(opts.FontPath, opts.Layout.QuestionFontSize); n != 0 {
		t.Errorf("question face refs = %d", n)
	}
	if n := c.fonts.Refs(opts.FontPath, opts.Layout.AnswerFontSize); n != 0 {
		t.Errorf("answer face refs = %d", n)
	}
	if n := c.fonts.Len(); n != 2 {
		t.Errorf("pool holds %d faces, want 2", n)
	}
}

func TestPaletteSwitchAppliesToNextFrame(t *testing.T) {
	lib, err := text.NewLibrary(text.EngineOpenType)
	if err != nil {
		t.Fatal(err)
	}
	pool := text.NewPool(lib)
	defer pool.Close()
	palette := theme.NewPalette(theme.Classic)
	c, err := New(testOptions(), palette, pool)
	if err != nil {
		t.Fatal(err)
	}

	q := testQuiz()
	if got := render(t, c, q, 1).At(testWidth-1, testHeight-1); got != theme.Classic.Background {
		t.Fatalf("background %v", got)
	}
	palette.Activate(theme.Grayscale)
	if got := render(t, c, q, 1).At(testWidth-1, testHeight-1); got != theme.Grayscale.Background {
		t.Errorf("background after switch %v", got)
	}
}

func TestAnswerLabels(t *testing.T) {
	opts := testOptions()
	c := &Compositor{opts: opts}
	if got := c.label(1, "Paris"); got != "Paris" {
		t.Errorf("label without letters = %q", got)
	}
	c.opts.Layout.AnswerLetters = true
	for i, want := range []string{"A) Paris", "B) Paris", "C) Paris", "D) Paris"} {
		if got := c.label(i, "Paris"); got != want {
			t.Errorf("label(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestQRBadge(t *testing.T) {
	opts := testOptions()
	opts.Layout.QRSize = 100
	opts.Layout.QRMargin = 10
	plain := render(t, newCompositor(t, opts, theme.Classic), testQuiz(), 1)

	opts.QRPayload = "https://example.com/quiz"
	c := newCompositor(t, opts, theme.Classic)
	f := render(t, c, testQuiz(), 1)

	b := c.badge.Bounds()
	x0, y0 := (testWidth-b.Dx())/2, testHeight-opts.Layout.QRMargin-b.Dy()
	accent := 0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if f.At(x, y) == theme.Classic.Accent {
				accent++
				if x < x0 || x >= x0+b.Dx() || y < y0 || y >= y0+b.Dy() {
					t.Fatalf("accent pixel (%d,%d) outside badge", x, y)
				}
			}
		}
	}
	if accent == 0 {
		t.Error("badge not drawn")
	}
	if bytes.Equal(plain.Pix, f.Pix) {
		t.Error("badge made no difference")
	}
}

func TestSession(t *testing.T) {
	lib, err := text.NewLibrary(text.EngineFreeType)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(testOptions(), theme.NewPalette(theme.Colorblind), lib)
	if err != nil {
		t.Fatal(err)
	}
	f := raster.NewFrame(testWidth, testHeight)
	if err := s.Render(f, testQuiz(), 0, 4); err != nil {
		t.Fatal(err)
	}
	if got := f.At(0, testHeight-1); got != theme.Colorblind.Background {
		t.Errorf("background %v", got)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := s.Render(f, testQuiz(), 0, 4); err == nil {
		t.Error("Render after Close should fail")
	}
}
