package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration. Zero-valued sections in
// a config file keep their defaults.
type Config struct {
	Video      Video      `yaml:"video"`
	Layout     Layout     `yaml:"layout"`
	Animation  Animation  `yaml:"animation"`
	Appearance Appearance `yaml:"appearance"`
	Input      Input      `yaml:"input"`
	Output     Output     `yaml:"output"`
	Audio      Audio      `yaml:"audio"`

	// Set from flags only.
	Workers      int    `yaml:"-"`
	ShowStats    bool   `yaml:"-"`
	BuildVersion string `yaml:"-"`
}

type Video struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// Layout is the frame geometry in pixels. QuestionY is the baseline of the
// question text; answer rows start at AnswerYStart and repeat every
// AnswerSpacing pixels.
type Layout struct {
	QuestionFontSize  int `yaml:"question_font_size"`
	QuestionY         int `yaml:"question_y_position"`
	AnswerFontSize    int `yaml:"answer_font_size"`
	AnswerYStart      int `yaml:"answer_y_start"`
	AnswerSpacing     int `yaml:"answer_spacing"`
	ButtonMargin      int `yaml:"button_margin"`
	ButtonHeight      int `yaml:"button_height"`
	ButtonRadius      int `yaml:"button_radius"`
	ButtonTextPadding int `yaml:"button_text_padding"`
	TimerBarHeight    int `yaml:"timer_bar_height"`

	// AnswerLetters prefixes labels with "A) ", "B) ", ...
	AnswerLetters bool `yaml:"answer_letters"`
	QRSize        int  `yaml:"qr_size"`
	QRMargin      int  `yaml:"qr_margin"`
}

// Animation durations in seconds.
type Animation struct {
	QuestionFadeDuration float64 `yaml:"question_fade_duration"`
	QuestionDelay        float64 `yaml:"question_delay"`
	AnswerFadeDuration   float64 `yaml:"answer_fade_duration"`
	AnswerDelayBetween   float64 `yaml:"answer_delay_between"`
}

type Appearance struct {
	ColorScheme string `yaml:"color_scheme"`
	FontPath    string `yaml:"font_path"`
	FontEngine  string `yaml:"font_engine"` // opentype | freetype
	QRPayload   string `yaml:"qr_payload"`
}

type Input struct {
	QuizFile string `yaml:"quiz_file"`
}

type Output struct {
	File    string `yaml:"file"`
	Encoder string `yaml:"encoder"` // empty: autodetect
	Quality int    `yaml:"quality"` // 0: encoder default
}

type Audio struct {
	Path string `yaml:"path"`
	Sync bool   `yaml:"sync"`
}

// Default returns the built-in configuration: a vertical 1080x1920 video at
// 30 FPS.
func Default() Config {
	return Config{
		Video: Video{Width: 1080, Height: 1920, FPS: 30},
		Layout: Layout{
			QuestionFontSize:  64,
			QuestionY:         400,
			AnswerFontSize:    48,
			AnswerYStart:      700,
			AnswerSpacing:     150,
			ButtonMargin:      100,
			ButtonHeight:      120,
			ButtonRadius:      20,
			ButtonTextPadding: 40,
			TimerBarHeight:    80,
			AnswerLetters:     true,
			QRSize:            200,
			QRMargin:          80,
		},
		Animation: Animation{
			QuestionFadeDuration: 0.5,
			AnswerFadeDuration:   0.3,
			AnswerDelayBetween:   0.3,
			QuestionDelay:        0,
		},
		Appearance: Appearance{
			ColorScheme: "colorblind",
			FontPath:    "builtin:gobold",
			FontEngine:  "opentype",
		},
		Input:  Input{QuizFile: ""},
		Output: Output{File: ""},
		Audio:  Audio{Sync: true},
	}
}

// Load reads a YAML (or JSON) configuration file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values the renderer and encoder depend on.
func (c Config) Validate() error {
	var errs []error
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		errs = append(errs, fmt.Errorf("video size %dx%d must be positive", c.Video.Width, c.Video.Height))
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("video size %dx%d must be even for yuv420p", c.Video.Width, c.Video.Height))
	}
	if c.Video.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", c.Video.FPS))
	}
	if c.Layout.QuestionFontSize <= 0 || c.Layout.AnswerFontSize <= 0 {
		errs = append(errs, errors.New("font sizes must be positive"))
	}
	if c.Layout.ButtonHeight <= 0 {
		errs = append(errs, errors.New("button height must be positive"))
	}
	a := c.Animation
	if a.QuestionFadeDuration < 0 || a.QuestionDelay < 0 || a.AnswerFadeDuration < 0 || a.AnswerDelayBetween < 0 {
		errs = append(errs, errors.New("animation durations must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
