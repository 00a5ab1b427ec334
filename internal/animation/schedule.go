// Package animation maps the elapsed time of a question to element opacity
// and reveal state. Every function is pure.
package animation

import "github.com/ivlev/quiz2video/internal/config"

// Opacity is a linear ramp from 0 at start to 1 at start+duration.
// A non-positive duration is a hard cut at start.
func Opacity(t, start, duration float64) float64 {
	switch {
	case t <= start:
		return 0
	case t >= start+duration:
		return 1
	}
	return (t - start) / duration
}

// QuestionStart returns when the question begins fading in.
func QuestionStart(a config.Animation) float64 {
	return a.QuestionDelay
}

// QuestionEnd returns when the question is fully visible.
func QuestionEnd(a config.Animation) float64 {
	return a.QuestionDelay + a.QuestionFadeDuration
}

// QuestionOpacity returns the question text opacity at t.
func QuestionOpacity(t float64, a config.Animation) float64 {
	return Opacity(t, QuestionStart(a), a.QuestionFadeDuration)
}

// AnswerStart returns when answer i (0-based) begins fading in. Answers
// follow the question in index order, AnswerDelayBetween apart.
func AnswerStart(i int, a config.Animation) float64 {
	return QuestionEnd(a) + float64(i)*a.AnswerDelayBetween
}

// AnswerEnd returns when answer i is fully visible.
func AnswerEnd(i int, a config.Animation) float64 {
	return AnswerStart(i, a) + a.AnswerFadeDuration
}

// AnswerOpacity returns the opacity of answer i at t.
func AnswerOpacity(t float64, i int, a config.Animation) float64 {
	return Opacity(t, AnswerStart(i, a), a.AnswerFadeDuration)
}

// Progress returns the elapsed fraction of the question, clamped to [0,1].
// A non-positive duration counts as already elapsed.
func Progress(t, questionDuration float64) float64 {
	if questionDuration <= 0 {
		return 1
	}
	p := t / questionDuration
	return max(0, min(1, p))
}

// Revealed reports whether the correct answer is shown at t. The reveal is
// a hard cut at questionDuration.
func Revealed(t, questionDuration float64) bool {
	return t >= questionDuration
}

// ButtonState is the highlight of an answer button.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonCorrect
	ButtonIncorrect
)

func (s ButtonState) String() string {
	switch s {
	case ButtonCorrect:
		return "correct"
	case ButtonIncorrect:
		return "incorrect"
	default:
		return "normal"
	}
}

// Button returns the highlight of an answer given the reveal state.
func Button(revealed, correct bool) ButtonState {
	switch {
	case !revealed:
		return ButtonNormal
	case correct:
		return ButtonCorrect
	default:
		return ButtonIncorrect
	}
}
