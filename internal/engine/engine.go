package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/quiz2video/internal/config"
	"github.com/ivlev/quiz2video/internal/director"
	"github.com/ivlev/quiz2video/internal/logging"
	"github.com/ivlev/quiz2video/internal/quiz"
	"github.com/ivlev/quiz2video/internal/raster"
	"github.com/ivlev/quiz2video/internal/renderer"
	"github.com/ivlev/quiz2video/internal/system"
	"github.com/ivlev/quiz2video/internal/text"
	"github.com/ivlev/quiz2video/internal/theme"
	"github.com/ivlev/quiz2video/internal/video"
)

// BenchmarkLog receives one line per run when stats are enabled.
var BenchmarkLog = "benchmark.log"

type VideoProject struct {
	Config  *config.Config
	Quiz    *quiz.Quiz
	Encoder video.FrameEncoder
	Palette *theme.Palette
	Library *text.Library

	// ProbeAudio returns the duration of an audio file in seconds.
	ProbeAudio func(ctx context.Context, path string) (float64, error)

	frames *system.FramePool
}

// Report summarizes a finished run.
type Report struct {
	Questions  int
	Frames     int
	Duration   float64 // seconds of video
	TotalTime  time.Duration
	RenderTime time.Duration
	EncodeTime time.Duration
}

// EffectiveFPS is frames produced per wall-clock second.
func (r Report) EffectiveFPS() float64 {
	if r.TotalTime <= 0 {
		return 0
	}
	return float64(r.Frames) / r.TotalTime.Seconds()
}

// NewVideoProject validates cfg and prepares the shared font library and
// the active theme.
func NewVideoProject(cfg *config.Config, q *quiz.Quiz, enc video.FrameEncoder) (*VideoProject, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lib, err := text.NewLibrary(cfg.Appearance.FontEngine)
	if err != nil {
		return nil, err
	}
	scheme, err := theme.Resolve(cfg.Appearance.ColorScheme)
	if err != nil {
		fmt.Printf("[!] %v\n", err)
	}
	return &VideoProject{
		Config:     cfg,
		Quiz:       q,
		Encoder:    enc,
		Palette:    theme.NewPalette(scheme),
		Library:    lib,
		ProbeAudio: system.GetAudioDuration,
		frames:     system.NewFramePool(),
	}, nil
}

// SyncReveal stretches the reveal period so that questions segments last at
// least audio seconds in total. Timings already long enough are returned
// unchanged.
func SyncReveal(t quiz.Timing, questions int, audio float64) quiz.Timing {
	if questions <= 0 {
		return t
	}
	total := float64(questions) * (t.QuestionDuration + t.RevealDuration)
	if audio > total {
		t.RevealDuration += (audio - total) / float64(questions)
	}
	return t
}

// prepare returns the quiz to render, with audio sync applied.
func (p *VideoProject) prepare(ctx context.Context) *quiz.Quiz {
	q := p.Quiz
	audio := p.Config.Audio
	if audio.Path == "" || !audio.Sync || p.ProbeAudio == nil {
		return q
	}

	dur, err := p.ProbeAudio(ctx, audio.Path)
	if err != nil {
		fmt.Printf("[!] Не удалось получить длительность аудио: %v\n", err)
		return q
	}
	synced := SyncReveal(q.Timing, q.Len(), dur)
	if synced == q.Timing {
		return q
	}
	fmt.Printf("[*] Показ ответа продлен до %.2fs под аудио (%.2fs)\n", synced.RevealDuration, dur)
	out := *q
	out.Timing = synced
	return &out
}

// Timeline returns the schedule Run would render.
func (p *VideoProject) Timeline(ctx context.Context) (*director.Timeline, error) {
	d := director.NewDirector(p.Config.Animation, p.Config.Video.FPS)
	return d.GenerateTimeline(p.prepare(ctx))
}

// ExportTimeline writes the timeline to path and reads it back, so a file
// that does not round-trip is reported instead of left behind.
func (p *VideoProject) ExportTimeline(ctx context.Context, path string) (*director.Timeline, error) {
	tl, err := p.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	if err := director.WriteTimeline(tl, path); err != nil {
		return nil, err
	}
	saved, err := director.ReadTimeline(path)
	if err != nil {
		return nil, fmt.Errorf("проверка таймлайна: %w", err)
	}
	if len(saved.Segments) != len(tl.Segments) || saved.Duration != tl.Duration {
		return nil, fmt.Errorf("таймлайн %s поврежден: %d сегментов из %d", path, len(saved.Segments), len(tl.Segments))
	}
	return saved, nil
}

func (p *VideoProject) rendererOptions() renderer.Options {
	return renderer.Options{
		Layout:    p.Config.Layout,
		Animation: p.Config.Animation,
		FontPath:  p.Config.Appearance.FontPath,
		QRPayload: p.Config.Appearance.QRPayload,
	}
}

func (p *VideoProject) Run(ctx context.Context) (Report, error) {
	startTime := time.Now()
	cfg := p.Config
	q := p.prepare(ctx)

	tl, err := director.NewDirector(cfg.Animation, cfg.Video.FPS).GenerateTimeline(q)
	if err != nil {
		return Report{}, fmt.Errorf("ошибка построения таймлайна: %w", err)
	}
	perQuestion := tl.Segments[0].Frames
	if perQuestion == 0 {
		return Report{}, fmt.Errorf("вопрос длительностью %.2fs не дает ни одного кадра", q.SegmentDuration())
	}
	total := perQuestion * q.Len()

	workers := max(cfg.Workers, 1)
	workers = min(workers, total)
	sessions := make([]*renderer.Session, 0, workers)
	defer func() {
		for _, s := range sessions {
			if err := s.Close(); err != nil {
				logging.Logger().Warn("session close", "error", err)
			}
		}
	}()
	for range workers {
		s, err := renderer.NewSession(p.rendererOptions(), p.Palette, p.Library)
		if err != nil {
			return Report{}, err
		}
		sessions = append(sessions, s)
	}

	fmt.Println("--- [PROJECT: QUIZ ENGINE] ---")
	fmt.Printf("[*] Вопросов: %d | Кадров: %d (%d на вопрос) | Длительность: %.2fs\n", q.Len(), total, perQuestion, tl.Duration)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Потоков: %d | Тема: %s\n",
		cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS, workers, p.Palette.Current().Name)
	fmt.Println("-----------------------------")

	params := video.Params{
		Width:     cfg.Video.Width,
		Height:    cfg.Video.Height,
		FPS:       cfg.Video.FPS,
		Output:    cfg.Output.File,
		Encoder:   cfg.Output.Encoder,
		Quality:   cfg.Output.Quality,
		AudioPath: cfg.Audio.Path,
	}
	if err := p.Encoder.Open(ctx, params); err != nil {
		return Report{}, fmt.Errorf("ошибка запуска энкодера: %w", err)
	}

	report := Report{Questions: q.Len(), Frames: total, Duration: tl.Duration}

	// Рендер (CPU) идет пачками по числу потоков; кодирование пачки
	// выполняется параллельно с рендером следующей.
	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []*raster.Frame, 1)

	g.Go(func() error {
		written := 0
		for batch := range batches {
			encodeStart := time.Now()
			for _, f := range batch {
				if err := p.Encoder.WriteFrame(f.Pix); err != nil {
					return fmt.Errorf("кадр %d: %w", written, err)
				}
				p.frames.Put(f)
				written++
				if written%perQuestion == 0 {
					fmt.Printf("[>] Ready: %d/%d\n", written/perQuestion, q.Len())
				}
			}
			report.EncodeTime += time.Since(encodeStart)
		}
		return nil
	})

	g.Go(func() error {
		defer close(batches)
		for start := 0; start < total; start += workers {
			end := min(start+workers, total)
			renderStart := time.Now()
			batch, err := p.renderBatch(gctx, sessions, q, start, end, perQuestion)
			if err != nil {
				return err
			}
			report.RenderTime += time.Since(renderStart)

			select {
			case batches <- batch:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	runErr := g.Wait()
	closeErr := p.Encoder.Close()
	if err := errors.Join(runErr, closeErr); err != nil {
		return report, err
	}

	report.TotalTime = time.Since(startTime)
	if cfg.ShowStats {
		p.printStats(report)
	}
	return report, nil
}

// renderBatch renders global frames [start, end) in parallel, one per
// session, and returns them in order.
func (p *VideoProject) renderBatch(ctx context.Context, sessions []*renderer.Session, q *quiz.Quiz, start, end, perQuestion int) ([]*raster.Frame, error) {
	fps := float64(p.Config.Video.FPS)
	batch := make([]*raster.Frame, end-start)

	g, ctx := errgroup.WithContext(ctx)
	for j := range batch {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx := start + j
			question, k := idx/perQuestion, idx%perQuestion
			f := p.frames.Get(p.Config.Video.Width, p.Config.Video.Height)
			batch[j] = f
			return sessions[j].Render(f, q, question, float64(k)/fps)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

func (p *VideoProject) printStats(r Report) {
	cfg := p.Config
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding (pipe): %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		cfg.BuildVersion, system.HostStats(), r.TotalTime.Seconds(), r.RenderTime.Seconds(), r.EncodeTime.Seconds(), r.EffectiveFPS(),
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Questions: %d | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(cfg.Input.QuizFile),
		r.Questions,
		r.Frames,
		r.TotalTime.Seconds(),
		r.RenderTime.Seconds(),
		r.EncodeTime.Seconds(),
		r.EffectiveFPS(),
	)

	if err := appendBenchmark(BenchmarkLog, logEntry); err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}

func appendBenchmark(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
