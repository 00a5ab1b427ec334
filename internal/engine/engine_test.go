package engine

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ivlev/quiz2video/internal/config"
	"github.com/ivlev/quiz2video/internal/director"
	"github.com/ivlev/quiz2video/internal/quiz"
	"github.com/ivlev/quiz2video/internal/raster"
	"github.com/ivlev/quiz2video/internal/renderer"
	"github.com/ivlev/quiz2video/internal/text"
	"github.com/ivlev/quiz2video/internal/video"
)

type memoryEncoder struct {
	mu      sync.Mutex
	params  video.Params
	frames  [][]byte
	opened  bool
	closed  bool
	failAt  int // WriteFrame fails on this frame when > 0
	openErr error
}

func (e *memoryEncoder) Open(_ context.Context, p video.Params) error {
	if e.openErr != nil {
		return e.openErr
	}
	e.params = p
	e.opened = true
	return nil
}

func (e *memoryEncoder) WriteFrame(pix []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failAt > 0 && len(e.frames)+1 == e.failAt {
		return errors.New("pipe closed")
	}
	e.frames = append(e.frames, bytes.Clone(pix))
	return nil
}

func (e *memoryEncoder) Close() error {
	e.closed = true
	return nil
}

func testConfig(workers int) *config.Config {
	cfg := config.Default()
	cfg.Video = config.Video{Width: 120, Height: 200, FPS: 10}
	cfg.Layout = config.Layout{
		QuestionFontSize:  16,
		QuestionY:         50,
		AnswerFontSize:    12,
		AnswerYStart:      80,
		AnswerSpacing:     35,
		ButtonMargin:      8,
		ButtonHeight:      28,
		ButtonRadius:      6,
		ButtonTextPadding: 6,
		TimerBarHeight:    6,
		AnswerLetters:     true,
	}
	cfg.Appearance.FontPath = text.BuiltinBold
	cfg.Audio = config.Audio{}
	cfg.Workers = workers
	cfg.Output.File = "out.mp4"
	return &cfg
}

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		Timing: quiz.Timing{QuestionDuration: 1, RevealDuration: 0.5},
		Questions: []quiz.Question{
			{Text: "2+2?", Answers: []string{"3", "4", "5"}, Correct: quiz.CorrectSet{1}},
			{Text: "Sky?", Answers: []string{"Blue", "Green"}, Correct: quiz.CorrectSet{0}},
		},
	}
}

func run(t *testing.T, cfg *config.Config, q *quiz.Quiz, enc *memoryEncoder) (*VideoProject, Report) {
	t.Helper()
	p, err := NewVideoProject(cfg, q, enc)
	if err != nil {
		t.Fatal(err)
	}
	r, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return p, r
}

func TestRunFrameCount(t *testing.T) {
	enc := &memoryEncoder{}
	_, r := run(t, testConfig(3), testQuiz(), enc)

	// ceil(1.5s * 10fps) = 15 frames per question
	if len(enc.frames) != 30 || r.Frames != 30 {
		t.Fatalf("encoded %d frames, report %d, want 30", len(enc.frames), r.Frames)
	}
	if !enc.opened || !enc.closed {
		t.Error("encoder not opened and closed")
	}
	if p := enc.params; p.Width != 120 || p.Height != 200 || p.FPS != 10 || p.Output != "out.mp4" {
		t.Errorf("params = %+v", p)
	}
	if r.Duration != 3 {
		t.Errorf("duration = %v", r.Duration)
	}
}

func TestRunMatchesSingleFrameRender(t *testing.T) {
	cfg := testConfig(4)
	q := testQuiz()
	enc := &memoryEncoder{}
	p, _ := run(t, cfg, q, enc)

	s, err := renderer.NewSession(p.rendererOptions(), p.Palette, p.Library)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for _, tc := range []struct {
		frame, question int
		elapsed         float64
	}{
		{0, 0, 0},
		{7, 0, 0.7},
		{10, 0, 1.0},
		{17, 1, 0.2},
		{29, 1, 1.4},
	} {
		f := raster.NewFrame(cfg.Video.Width, cfg.Video.Height)
		if err := s.Render(f, q, tc.question, tc.elapsed); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(f.Pix, enc.frames[tc.frame]) {
			t.Errorf("frame %d differs from question %d at %.1fs", tc.frame, tc.question, tc.elapsed)
		}
	}
}

func TestRunIsIndependentOfWorkers(t *testing.T) {
	one := &memoryEncoder{}
	run(t, testConfig(1), testQuiz(), one)
	many := &memoryEncoder{}
	run(t, testConfig(7), testQuiz(), many)

	if len(one.frames) != len(many.frames) {
		t.Fatalf("%d vs %d frames", len(one.frames), len(many.frames))
	}
	for i := range one.frames {
		if !bytes.Equal(one.frames[i], many.frames[i]) {
			t.Fatalf("frame %d differs between worker counts", i)
		}
	}
}

func TestRunAudioSync(t *testing.T) {
	cfg := testConfig(2)
	cfg.Audio = config.Audio{Path: "voice.mp3", Sync: true}
	enc := &memoryEncoder{}
	p, err := NewVideoProject(cfg, testQuiz(), enc)
	if err != nil {
		t.Fatal(err)
	}
	p.ProbeAudio = func(context.Context, string) (float64, error) { return 5, nil }

	r, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// reveal grows from 0.5s to 1.5s: 2 * ceil(2.5s * 10fps)
	if r.Frames != 50 || len(enc.frames) != 50 {
		t.Errorf("frames = %d/%d, want 50", r.Frames, len(enc.frames))
	}
	if enc.params.AudioPath != "voice.mp3" {
		t.Errorf("audio not passed to encoder: %+v", enc.params)
	}
	if p.Quiz.Timing.RevealDuration != 0.5 {
		t.Error("source quiz was modified")
	}
}

func TestRunAudioProbeFailureKeepsTiming(t *testing.T) {
	cfg := testConfig(2)
	cfg.Audio = config.Audio{Path: "voice.mp3", Sync: true}
	enc := &memoryEncoder{}
	p, err := NewVideoProject(cfg, testQuiz(), enc)
	if err != nil {
		t.Fatal(err)
	}
	p.ProbeAudio = func(context.Context, string) (float64, error) { return 0, errors.New("no ffprobe") }

	r, err := p.Run(context.Background())
	if err != nil || r.Frames != 30 {
		t.Errorf("Run = %d frames, %v", r.Frames, err)
	}
}

func TestRunEncoderFailure(t *testing.T) {
	enc := &memoryEncoder{failAt: 12}
	p, err := NewVideoProject(testConfig(3), testQuiz(), enc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected write error")
	}
	if !enc.closed {
		t.Error("encoder left open")
	}

	enc = &memoryEncoder{openErr: errors.New("no ffmpeg")}
	p, err = NewVideoProject(testConfig(3), testQuiz(), enc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background()); err == nil || enc.closed {
		t.Errorf("open failure: err %v, closed %v", err, enc.closed)
	}
}

func TestRunFontFailure(t *testing.T) {
	cfg := testConfig(2)
	cfg.Appearance.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	enc := &memoryEncoder{}
	p, err := NewVideoProject(cfg, testQuiz(), enc)
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Run(context.Background())
	var re *renderer.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RenderError", err)
	}
	if len(enc.frames) != 0 || !enc.closed {
		t.Errorf("%d frames written, closed %v", len(enc.frames), enc.closed)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enc := &memoryEncoder{}
	p, err := NewVideoProject(testConfig(2), testQuiz(), enc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewVideoProjectErrors(t *testing.T) {
	cfg := testConfig(1)
	cfg.Video.Width = 121
	if _, err := NewVideoProject(cfg, testQuiz(), &memoryEncoder{}); err == nil {
		t.Error("expected validation error")
	}

	cfg = testConfig(1)
	cfg.Appearance.FontEngine = "cairo"
	if _, err := NewVideoProject(cfg, testQuiz(), &memoryEncoder{}); !errors.Is(err, text.ErrUnknownEngine) {
		t.Errorf("err = %v", err)
	}

	cfg = testConfig(1)
	cfg.Appearance.ColorScheme = "neon"
	p, err := NewVideoProject(cfg, testQuiz(), &memoryEncoder{})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Palette.Current().Name; got != "gold-purple" {
		t.Errorf("unknown scheme resolved to %s", got)
	}
}

func TestSyncReveal(t *testing.T) {
	base := quiz.Timing{QuestionDuration: 10, RevealDuration: 3}
	tests := []struct {
		name      string
		questions int
		audio     float64
		want      float64
	}{
		{"shorter audio", 2, 20, 3},
		{"equal audio", 2, 26, 3},
		{"longer audio", 2, 30, 5},
		{"no questions", 0, 30, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SyncReveal(base, tt.questions, tt.audio)
			if got.RevealDuration != tt.want || got.QuestionDuration != 10 {
				t.Errorf("SyncReveal = %+v, want reveal %v", got, tt.want)
			}
		})
	}
}

func TestTimeline(t *testing.T) {
	p, err := NewVideoProject(testConfig(1), testQuiz(), &memoryEncoder{})
	if err != nil {
		t.Fatal(err)
	}
	tl, err := p.Timeline(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tl.Segments) != 2 || tl.Segments[0].Frames != 15 {
		t.Errorf("timeline = %+v", tl)
	}
}

func TestPrintStatsWritesBenchmarkLog(t *testing.T) {
	old := BenchmarkLog
	BenchmarkLog = filepath.Join(t.TempDir(), "benchmark.log")
	defer func() { BenchmarkLog = old }()

	cfg := testConfig(2)
	cfg.ShowStats = true
	cfg.BuildVersion = "test"
	run(t, cfg, testQuiz(), &memoryEncoder{})

	data, err := os.ReadFile(BenchmarkLog)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("Build: test")) || !bytes.Contains(data, []byte("Frames: 30")) {
		t.Errorf("benchmark log = %q", data)
	}
}

func TestPreview(t *testing.T) {
	cfg := testConfig(1)
	p, err := NewVideoProject(cfg, testQuiz(), &memoryEncoder{})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out", "preview.png")
	opacities, err := p.Preview(path, 1, 0.65)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	want := []director.ElementOpacity{
		{Element: director.ElementQuestion, Opacity: 1},
		{Element: "answer_1", Opacity: 0.5},
		{Element: "answer_2", Opacity: 0},
	}
	if len(opacities) != len(want) {
		t.Fatalf("opacities = %+v", opacities)
	}
	for i, w := range want {
		if opacities[i].Element != w.Element || math.Abs(opacities[i].Opacity-w.Opacity) > 1e-9 {
			t.Errorf("opacities[%d] = %+v, want %+v", i, opacities[i], w)
		}
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != cfg.Video.Width || b.Dy() != cfg.Video.Height {
		t.Errorf("preview is %v", b)
	}

	var oor *renderer.OutOfRangeError
	if _, err := p.Preview(path, 5, 0); !errors.As(err, &oor) {
		t.Errorf("err = %v, want OutOfRangeError", err)
	}
}

func TestExportTimeline(t *testing.T) {
	p, err := NewVideoProject(testConfig(1), testQuiz(), &memoryEncoder{})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "timeline.yaml")
	tl, err := p.ExportTimeline(context.Background(), path)
	if err != nil {
		t.Fatalf("ExportTimeline: %v", err)
	}
	if len(tl.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(tl.Segments))
	}
	if tl.Duration != 3 {
		t.Errorf("duration = %v, want 3", tl.Duration)
	}
	if tl.Segments[1].Frames != 15 {
		t.Errorf("frames = %d, want 15", tl.Segments[1].Frames)
	}

	if _, err := p.ExportTimeline(context.Background(), t.TempDir()); err == nil {
		t.Error("expected error when path is a directory")
	}
}

func TestAppendBenchmark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark.log")
	for _, line := range []string{"first\n", "second\n"} {
		if err := appendBenchmark(path, line); err != nil {
			t.Fatalf("appendBenchmark: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Split(strings.TrimSpace(string(data)), "\n"); len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("log = %q", data)
	}

	if err := appendBenchmark(t.TempDir(), "x\n"); err == nil {
		t.Error("expected error when path is a directory")
	}
}
