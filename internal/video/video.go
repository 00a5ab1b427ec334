// Package video streams raw frames into an encoder.
package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Params describes the output stream. Quality 0 selects the encoder's
// default.
type Params struct {
	Width     int
	Height    int
	FPS       int
	Output    string
	Encoder   string // h264_videotoolbox | h264_nvenc | libx264
	Quality   int
	AudioPath string // muxed when set; the video is cut to the shorter stream
}

// FrameEncoder consumes tightly packed RGB24 frames in presentation order.
type FrameEncoder interface {
	Open(ctx context.Context, p Params) error
	WriteFrame(pix []byte) error
	Close() error
}

var (
	ErrNotOpen     = errors.New("video: encoder not open")
	ErrAlreadyOpen = errors.New("video: encoder already open")
)

const pipeBufferFrames = 2

// FFmpegEncoder pipes rgb24 frames to an ffmpeg process.
type FFmpegEncoder struct {
	Binary string // default "ffmpeg"

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	w         *bufio.Writer
	stderr    *tailBuffer
	frameSize int
}

func (e *FFmpegEncoder) Open(ctx context.Context, p Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil {
		return ErrAlreadyOpen
	}
	if p.Width <= 0 || p.Height <= 0 || p.FPS <= 0 {
		return fmt.Errorf("video: invalid stream %dx%d@%d", p.Width, p.Height, p.FPS)
	}

	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, BuildArgs(p)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	e.cmd = cmd
	e.stdin = stdin
	e.stderr = stderr
	e.frameSize = p.Width * p.Height * 3
	e.w = bufio.NewWriterSize(stdin, e.frameSize*pipeBufferFrames)
	return nil
}

// WriteFrame writes one frame. pix must be exactly width*height*3 bytes.
func (e *FFmpegEncoder) WriteFrame(pix []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return ErrNotOpen
	}
	if len(pix) != e.frameSize {
		return fmt.Errorf("video: frame is %d bytes, want %d", len(pix), e.frameSize)
	}
	if _, err := e.w.Write(pix); err != nil {
		return fmt.Errorf("write raw error: %w (ffmpeg: %s)", err, e.stderr)
	}
	return nil
}

// Close flushes pending frames, ends the input stream and waits for ffmpeg.
func (e *FFmpegEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return ErrNotOpen
	}
	flushErr := e.w.Flush()
	closeErr := e.stdin.Close()
	waitErr := e.cmd.Wait()
	stderr := e.stderr.String()
	e.cmd, e.stdin, e.w = nil, nil, nil

	if waitErr != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", waitErr, stderr)
	}
	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("ffmpeg input error: %w", err)
	}
	return nil
}

// BuildArgs returns the ffmpeg arguments for p.
func BuildArgs(p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
	}
	if p.AudioPath != "" {
		args = append(args, "-i", p.AudioPath, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-shortest")
	}

	encoder := p.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	args = append(args, "-c:v", encoder, "-pix_fmt", "yuv420p")
	args = append(args, QualityArgs(encoder, p.Quality)...)
	args = append(args, p.Output)
	return args
}

// QualityArgs maps a quality value to encoder flags.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		if quality <= 0 {
			quality = 75
		}
		// VideoToolbox часто не поддерживает -q:v. Используем битрейт: 75 -> 7.5Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		if quality <= 0 {
			quality = 23
		}
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		if quality <= 0 {
			quality = 23
		}
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if extra := t.buf.Len() - t.limit; extra > 0 {
		t.buf.Next(extra)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}
