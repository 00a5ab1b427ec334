package director

import (
	"fmt"
	"math"
	"slices"

	"github.com/ivlev/quiz2video/internal/animation"
	"github.com/ivlev/quiz2video/internal/config"
	"github.com/ivlev/quiz2video/internal/quiz"
)

// TimelineVersion is written into every generated timeline.
const TimelineVersion = "1.0"

// frameEpsilon absorbs float error in duration*fps products such as
// 10.1*30 = 303.00000000000006.
const frameEpsilon = 1e-9

// Director lays questions out on the video time axis.
type Director struct {
	Animation config.Animation
	FPS       int
}

// NewDirector creates a Director for the given animation settings.
func NewDirector(anim config.Animation, fps int) *Director {
	return &Director{Animation: anim, FPS: fps}
}

// FrameCount returns how many frames cover duration seconds at fps:
// ceil(duration*fps). Frame k shows elapsed time k/fps.
func FrameCount(duration float64, fps int) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(duration*float64(fps) - frameEpsilon))
}

// GenerateTimeline builds the timeline of q, one segment per question.
func (d *Director) GenerateTimeline(q *quiz.Quiz) (*Timeline, error) {
	if q.Len() == 0 {
		return nil, fmt.Errorf("no questions")
	}
	if d.FPS <= 0 {
		return nil, fmt.Errorf("invalid fps %d", d.FPS)
	}

	segmentDuration := q.SegmentDuration()
	frames := FrameCount(segmentDuration, d.FPS)
	// Frames are whole, so segments start on frame boundaries.
	step := float64(frames) / float64(d.FPS)

	tl := &Timeline{Version: TimelineVersion, FPS: d.FPS}
	for i, question := range q.Questions {
		tl.Segments = append(tl.Segments, Segment{
			ID:        i + 1,
			Question:  question.Text,
			Start:     float64(i) * step,
			Duration:  segmentDuration,
			Frames:    frames,
			Reveal:    q.Timing.QuestionDuration,
			Keyframes: d.generateKeyframes(len(question.Answers)),
		})
	}
	tl.Duration = float64(q.Len()) * step
	return tl, nil
}

// generateKeyframes creates the fade keyframes of one question with the
// given number of answers, ordered by time.
func (d *Director) generateKeyframes(answers int) []Keyframe {
	a := d.Animation
	keyframes := fade(ElementQuestion, animation.QuestionStart(a), animation.QuestionEnd(a))
	for i := 0; i < answers; i++ {
		keyframes = append(keyframes, fade(AnswerElement(i), animation.AnswerStart(i, a), animation.AnswerEnd(i, a))...)
	}

	slices.SortStableFunc(keyframes, func(x, y Keyframe) int {
		switch {
		case x.Time < y.Time:
			return -1
		case x.Time > y.Time:
			return 1
		}
		return 0
	})
	return keyframes
}

func fade(element string, start, end float64) []Keyframe {
	return []Keyframe{
		{Time: start, Element: element, Event: EventFadeStart, Opacity: 0},
		{Time: end, Element: element, Event: EventFadeEnd, Opacity: 1},
	}
}

// AnswerElement names answer i (0-based) in keyframes.
func AnswerElement(i int) string {
	return fmt.Sprintf("answer_%d", i+1)
}
