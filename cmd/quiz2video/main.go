package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/quiz2video/internal/config"
	"github.com/ivlev/quiz2video/internal/director"
	"github.com/ivlev/quiz2video/internal/engine"
	"github.com/ivlev/quiz2video/internal/logging"
	"github.com/ivlev/quiz2video/internal/quiz"
	"github.com/ivlev/quiz2video/internal/raster"
	"github.com/ivlev/quiz2video/internal/system"
	"github.com/ivlev/quiz2video/internal/theme"
	"github.com/ivlev/quiz2video/internal/video"
)

// Задается при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Создаем нужные директории, если их нет
	if err := system.EnsureDirs("input/quiz", "input/audio", "output"); err != nil {
		fmt.Printf("[!] Не удалось создать директории: %v\n", err)
	}

	configPtr := flag.String("config", "", "Путь к YAML/JSON конфигурации (по умолчанию: встроенные настройки)")
	quizPtr := flag.String("quiz", "", "Путь к файлу викторины (по умолчанию: самый свежий файл в input/quiz/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	workersPtr := flag.Int("workers", 0, "Потоки рендера (0 - по числу ядер и свободной памяти)")
	fpsPtr := flag.Int("fps", 0, "FPS (0 - из конфигурации)")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	audioSyncPtr := flag.Bool("audio-sync", true, "Продлевать показ ответа, чтобы видео было не короче аудио")
	presetPtr := flag.String("preset", "", "Пресет формата: 9:16 (Shorts/TikTok), 16:9, 4:5 (Instagram)")
	schemePtr := flag.String("scheme", "", "Цветовая схема: "+strings.Join(theme.Names(), ", "))
	enginePtr := flag.String("engine", "", "Движок шрифтов: opentype, freetype")
	fontPtr := flag.String("font", "", "Путь к TTF/OTF шрифту или builtin:goregular / builtin:gobold")
	qrPtr := flag.String("qr", "", "Текст или ссылка для QR-кода внизу кадра")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	timelinePtr := flag.String("timeline", "", "Сохранить таймлайн в YAML и выйти (auto - в output/timelines/)")
	previewPtr := flag.Float64("preview", -1, "Сохранить PNG кадра первого вопроса на указанной секунде и выйти")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и дописать benchmark.log")
	verbosePtr := flag.Bool("verbose", false, "Подробный лог рендера")

	flag.Parse()

	level := slog.LevelWarn
	if *verbosePtr {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
		fmt.Printf("[*] Конфигурация: %s\n", *configPtr)
	}

	switch *presetPtr {
	case "9:16":
		cfg.Video.Width, cfg.Video.Height = 1080, 1920
	case "16:9":
		cfg.Video.Width, cfg.Video.Height = 1920, 1080
	case "4:5":
		cfg.Video.Width, cfg.Video.Height = 1080, 1350
	}
	if *fpsPtr > 0 {
		cfg.Video.FPS = *fpsPtr
	}
	if *schemePtr != "" {
		cfg.Appearance.ColorScheme = *schemePtr
	}
	if *enginePtr != "" {
		cfg.Appearance.FontEngine = *enginePtr
	}
	if *fontPtr != "" {
		cfg.Appearance.FontPath = *fontPtr
	}
	if *qrPtr != "" {
		cfg.Appearance.QRPayload = *qrPtr
	}
	if *qualityPtr > 0 {
		cfg.Output.Quality = *qualityPtr
	}
	cfg.ShowStats = *statsPtr
	cfg.BuildVersion = version

	quizPath := *quizPtr
	if quizPath == "" {
		quizPath = cfg.Input.QuizFile
	}
	if quizPath == "" {
		latest, err := system.FindLatestQuiz("input/quiz")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите YAML/JSON викторину в input/quiz/", err)
		}
		quizPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", quizPath)
	}
	cfg.Input.QuizFile = quizPath

	q, err := quiz.Load(quizPath)
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки викторины: %v", err)
	}

	// Обработка аудио
	audioPath := *audioPtr
	if audioPath == "" {
		audioPath = cfg.Audio.Path
	}
	if audioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err == nil {
			audioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
		}
	}
	cfg.Audio.Path = audioPath
	cfg.Audio.Sync = cfg.Audio.Sync && *audioSyncPtr

	finalOutput := *outputPtr
	if finalOutput == "" {
		finalOutput = cfg.Output.File
	}
	if finalOutput == "" {
		baseName := filepath.Base(quizPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}
	cfg.Output.File = finalOutput

	workers := *workersPtr
	if workers <= 0 {
		stats := system.HostStats()
		workers = stats.Workers(cfg.Video.Width * cfg.Video.Height * raster.BytesPerPixel)
		fmt.Printf("[*] %s\n", stats)
	}
	cfg.Workers = workers

	if cfg.Output.Encoder == "" {
		encoderName := system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
		cfg.Output.Encoder = encoderName
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	project, err := engine.NewVideoProject(&cfg, q, &video.FFmpegEncoder{})
	if err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if *timelinePtr != "" {
		path := *timelinePtr
		if path == "auto" {
			path = director.GenerateTimelinePath()
		}
		tl, err := project.ExportTimeline(ctx, path)
		if err != nil {
			log.Fatalf("[-] Ошибка таймлайна: %v", err)
		}
		fmt.Printf("[+++] Успех! Таймлайн сохранен: %s (%d сегментов, %.2f сек)\n", path, len(tl.Segments), tl.Duration)
		return
	}

	if *previewPtr >= 0 {
		path := strings.TrimSuffix(finalOutput, filepath.Ext(finalOutput)) + ".png"
		opacities, err := project.Preview(path, 0, *previewPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка превью: %v", err)
		}
		for _, o := range opacities {
			fmt.Printf("[*] %s: %.2f\n", o.Element, o.Opacity)
		}
		fmt.Printf("[+++] Успех! Превью: %s\n", path)
		return
	}

	if _, err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.Output.File)
}
