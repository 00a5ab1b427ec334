// Package quiz loads quiz documents. A document is YAML (or JSON):
//
//	config:
//	  question_duration: 10
//	  reveal_duration: 3
//	questions:
//	  - question: "Capital of France?"
//	    answers: [Berlin, Paris, Rome]
//	    correct: 1
//
// correct may also be a list of indices when several answers are right.
package quiz

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	MinAnswers = 2
	MaxAnswers = 4

	DefaultQuestionDuration = 10.0
	DefaultRevealDuration   = 3.0
)

var (
	ErrNoQuestions     = errors.New("quiz: no questions")
	ErrTooFewAnswers   = fmt.Errorf("quiz: fewer than %d answers", MinAnswers)
	ErrTooManyAnswers  = fmt.Errorf("quiz: more than %d answers", MaxAnswers)
	ErrNoCorrectAnswer = errors.New("quiz: no correct answer")
	ErrCorrectRange    = errors.New("quiz: correct answer index out of range")
	ErrEmptyText       = errors.New("quiz: empty question text")
)

// CorrectSet holds the indices of the correct answers. In a document it is
// written as a single integer or a list of integers.
type CorrectSet []int

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CorrectSet) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var i int
		if err := n.Decode(&i); err != nil {
			return err
		}
		*c = CorrectSet{i}
		return nil
	case yaml.SequenceNode:
		var s []int
		if err := n.Decode(&s); err != nil {
			return err
		}
		*c = s
		return nil
	}
	return fmt.Errorf("quiz: line %d: correct must be an integer or a list", n.Line)
}

// Contains reports whether answer i is correct.
func (c CorrectSet) Contains(i int) bool {
	return slices.Contains(c, i)
}

// Question is one quiz question with its ordered answers.
type Question struct {
	Text    string     `yaml:"question"`
	Answers []string   `yaml:"answers"`
	Correct CorrectSet `yaml:"correct"`
}

// IsCorrect reports whether answer i is one of the correct answers.
func (q Question) IsCorrect(i int) bool { return q.Correct.Contains(i) }

// Validate checks answer bounds and correct indices.
func (q Question) Validate() error {
	switch {
	case q.Text == "":
		return ErrEmptyText
	case len(q.Answers) < MinAnswers:
		return fmt.Errorf("%w: got %d", ErrTooFewAnswers, len(q.Answers))
	case len(q.Answers) > MaxAnswers:
		return fmt.Errorf("%w: got %d", ErrTooManyAnswers, len(q.Answers))
	case len(q.Correct) == 0:
		return ErrNoCorrectAnswer
	}
	for _, i := range q.Correct {
		if i < 0 || i >= len(q.Answers) {
			return fmt.Errorf("%w: %d of %d answers", ErrCorrectRange, i, len(q.Answers))
		}
	}
	return nil
}

// Timing holds the per-question durations in seconds. The answer is
// revealed at QuestionDuration and stays on screen for RevealDuration.
type Timing struct {
	QuestionDuration float64 `yaml:"question_duration"`
	RevealDuration   float64 `yaml:"reveal_duration"`
}

// Quiz is a loaded document.
type Quiz struct {
	Timing    Timing     `yaml:"config"`
	Questions []Question `yaml:"questions"`
}

// Len returns the number of questions.
func (q *Quiz) Len() int { return len(q.Questions) }

// SegmentDuration is the on-screen time of one question.
func (q *Quiz) SegmentDuration() float64 {
	return q.Timing.QuestionDuration + q.Timing.RevealDuration
}

// Validate checks every question and the timing.
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return ErrNoQuestions
	}
	if q.Timing.QuestionDuration <= 0 || q.Timing.RevealDuration < 0 {
		return fmt.Errorf("quiz: invalid timing %+v", q.Timing)
	}
	for i, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Parse decodes and validates a document. Missing durations take the
// defaults.
func Parse(data []byte) (*Quiz, error) {
	q := &Quiz{Timing: Timing{
		QuestionDuration: DefaultQuestionDuration,
		RevealDuration:   DefaultRevealDuration,
	}}
	if err := yaml.Unmarshal(data, q); err != nil {
		return nil, fmt.Errorf("quiz: parse: %w", err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Load reads and parses a quiz file.
func Load(path string) (*Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quiz: %w", err)
	}
	q, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}
