package director

// Timeline is the schedule of a whole quiz video.
type Timeline struct {
	Version  string    `yaml:"version"`
	FPS      int       `yaml:"fps"`
	Duration float64   `yaml:"duration"` // Total duration in seconds
	Segments []Segment `yaml:"segments"`
}

// Segment is one question on screen: its fade-ins, the reveal and the
// reveal hold.
type Segment struct {
	ID        int        `yaml:"id"`
	Question  string     `yaml:"question"`
	Start     float64    `yaml:"start"`    // Offset of the segment in the video
	Duration  float64    `yaml:"duration"` // Question time plus reveal time
	Frames    int        `yaml:"frames"`
	Reveal    float64    `yaml:"reveal"` // Offset within the segment
	Keyframes []Keyframe `yaml:"keyframes"`
}

// Keyframe pins the opacity of one element at a time offset within its
// segment. Opacity changes linearly between keyframes of the same element.
type Keyframe struct {
	Time    float64 `yaml:"time"`
	Element string  `yaml:"element"` // "question" or "answer_N"
	Event   string  `yaml:"event"`   // fade_start | fade_end
	Opacity float64 `yaml:"opacity"`
}

// Keyframe events.
const (
	EventFadeStart = "fade_start"
	EventFadeEnd   = "fade_end"
)

// ElementQuestion names the question text in keyframes.
const ElementQuestion = "question"
