// Package renderer composes quiz frames: background, timer bar, fading
// question text and answer buttons that highlight on reveal.
package renderer

import (
	"fmt"
	"image"

	"github.com/ivlev/quiz2video/internal/animation"
	"github.com/ivlev/quiz2video/internal/config"
	"github.com/ivlev/quiz2video/internal/quiz"
	"github.com/ivlev/quiz2video/internal/raster"
	"github.com/ivlev/quiz2video/internal/text"
	"github.com/ivlev/quiz2video/internal/theme"
)

// Options configures a Compositor. FontPath is used for both the question
// and the answers, at their respective layout sizes.
type Options struct {
	Layout    config.Layout
	Animation config.Animation
	FontPath  string
	QRPayload string
}

// Compositor renders frames. Output depends only on the quiz, the question
// index, the elapsed time, the options and the palette's active scheme; no
// state is carried from one frame to the next. A Compositor is used by one
// goroutine at a time, like the text.Pool it draws faces from.
type Compositor struct {
	opts    Options
	palette *theme.Palette
	fonts   *text.Pool
	badge   image.Image
}

// New returns a compositor reading colors from palette and glyph contexts
// from fonts.
func New(opts Options, palette *theme.Palette, fonts *text.Pool) (*Compositor, error) {
	c := &Compositor{
		opts:    opts,
		palette: palette,
		fonts:   fonts,
	}
	if opts.QRPayload != "" {
		badge, err := qrBadge(opts.QRPayload, opts.Layout.QRSize)
		if err != nil {
			return nil, fmt.Errorf("renderer: qr badge: %w", err)
		}
		c.badge = badge
	}
	return c, nil
}

// Render draws question index of q at elapsed seconds into dst.
//
// An invalid index yields *OutOfRangeError and a missing glyph context
// yields *RenderError; in both cases dst is left untouched.
func (c *Compositor) Render(dst *raster.Frame, q *quiz.Quiz, index int, elapsed float64) error {
	if index < 0 || index >= q.Len() {
		return &OutOfRangeError{Index: index, Len: q.Len()}
	}
	question := q.Questions[index]
	layout := c.opts.Layout

	// Both contexts are acquired before the first pixel is written.
	qFace, err := c.fonts.Acquire(c.opts.FontPath, layout.QuestionFontSize)
	if err != nil {
		return &RenderError{Question: index, Err: err}
	}
	defer c.fonts.Release(qFace)
	aFace, err := c.fonts.Acquire(c.opts.FontPath, layout.AnswerFontSize)
	if err != nil {
		return &RenderError{Question: index, Err: err}
	}
	defer c.fonts.Release(aFace)

	colors := c.palette.Current()
	questionDuration := q.Timing.QuestionDuration
	revealed := animation.Revealed(elapsed, questionDuration)

	dst.Fill(colors.Background)
	dst.DrawTimerBar(animation.Progress(elapsed, questionDuration), layout.TimerBarHeight,
		colors.TimerBackground, colors.TimerFill)

	if alpha := animation.QuestionOpacity(elapsed, c.opts.Animation); alpha > 0 {
		run := qFace.Shape(question.Text)
		x := (dst.Width - run.Advance) / 2
		dst.CompositeRun(run, x, layout.QuestionY, colors.QuestionText, alpha)
	}

	buttonWidth := dst.Width - 2*layout.ButtonMargin
	textX := layout.ButtonMargin + layout.ButtonTextPadding
	baselineOffset := (layout.ButtonHeight + aFace.Ascent() - aFace.Descent()) / 2

	for i, answer := range question.Answers {
		alpha := animation.AnswerOpacity(elapsed, i, c.opts.Animation)
		if alpha <= 0 {
			continue
		}
		y := layout.AnswerYStart + i*layout.AnswerSpacing
		state := animation.Button(revealed, question.IsCorrect(i))

		dst.FillRoundedRect(layout.ButtonMargin, y, buttonWidth, layout.ButtonHeight,
			layout.ButtonRadius, buttonColor(colors, state), alpha)
		dst.CompositeRun(aFace.Shape(c.label(i, answer)), textX, y+baselineOffset, colors.AnswerText, alpha)
	}

	if c.badge != nil {
		b := c.badge.Bounds()
		x := (dst.Width - b.Dx()) / 2
		y := dst.Height - layout.QRMargin - b.Dy()
		dst.CompositeStencil(c.badge, x, y, colors.Accent, 1)
	}
	return nil
}

// label returns the text drawn on answer button i.
func (c *Compositor) label(i int, answer string) string {
	if !c.opts.Layout.AnswerLetters {
		return answer
	}
	return fmt.Sprintf("%c) %s", 'A'+rune(i), answer)
}

func buttonColor(s theme.Scheme, state animation.ButtonState) theme.Color {
	switch state {
	case animation.ButtonCorrect:
		return s.AnswerButtonCorrect
	case animation.ButtonIncorrect:
		return s.AnswerButtonIncorrect
	default:
		return s.AnswerButtonNormal
	}
}
