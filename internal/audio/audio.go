// Package audio turns uploaded media into the canonical waveform sent to
// speech recognition: mono, 16-bit signed PCM in a WAV container.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmpty       = errors.New("audio file is empty")
	ErrTooLarge    = errors.New("audio file exceeds size limit")
	ErrTooLong     = errors.New("audio exceeds duration limit")
	ErrUndecodable = errors.New("audio could not be decoded")
	ErrStorage     = errors.New("audio could not be written to temporary storage")
)

const canonicalName = "canonical.wav"

// Config bounds what the normalizer accepts and where it works.
type Config struct {
	TempDir        string
	FFmpegPath     string
	MaxUploadBytes int64
	MaxDuration    time.Duration
	SampleRate     int // target rate for containers decoded through ffmpeg
}

// Request is one upload to normalize.
type Request struct {
	ID       string
	Filename string
	Data     []byte
	Enhance  bool
}

// Canonical is the normalized waveform on disk. Callers must call Cleanup
// once the file is no longer needed.
type Canonical struct {
	Path       string
	Dir        string
	SampleRate int
	Frames     int
	Duration   time.Duration
	Format     string // detected source container
	Enhanced   bool
}

// Cleanup removes the request's temporary workspace.
func (c *Canonical) Cleanup() error {
	if c == nil || c.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		return err
	}
	c.Dir = ""
	return nil
}

// Normalizer decodes uploads into canonical audio.
type Normalizer struct {
	cfg    Config
	runner commandRunner
}

func NewNormalizer(cfg Config) *Normalizer {
	return newNormalizer(cfg, &execRunner{})
}

func newNormalizer(cfg Config, runner commandRunner) *Normalizer {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return &Normalizer{cfg: cfg, runner: runner}
}

// WorkDir is the directory temporary files for the given id are written to.
func (n *Normalizer) WorkDir(id string) string {
	return filepath.Join(n.cfg.TempDir, "audiosum-"+id)
}

// Normalize validates the upload, decodes it, downmixes to mono, optionally
// enhances it and writes the canonical WAV. On error nothing is left on disk.
func (n *Normalizer) Normalize(ctx context.Context, req Request) (*Canonical, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmpty
	}
	if n.cfg.MaxUploadBytes > 0 && int64(len(req.Data)) > n.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(req.Data), n.cfg.MaxUploadBytes)
	}

	mt := mimetype.Detect(req.Data)
	if !decodableType(mt) {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrUndecodable, mt.String())
	}

	dir := n.WorkDir(req.ID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	canonical, err := n.normalizeIn(ctx, dir, mt, req)
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			slog.Warn("failed to remove temporary audio", "dir", dir, "error", rmErr)
		}
		return nil, err
	}
	return canonical, nil
}

func (n *Normalizer) normalizeIn(ctx context.Context, dir string, mt *mimetype.MIME, req Request) (*Canonical, error) {
	srcPath := filepath.Join(dir, sourceFileName(req.Filename))
	if err := os.WriteFile(srcPath, req.Data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	var (
		pcm *pcmAudio
		err error
	)
	if mt.Is("audio/wav") {
		pcm, err = decodeWAV(req.Data)
		if err != nil {
			slog.Debug("in-process wav decode failed, falling back to ffmpeg", "id", req.ID, "error", err)
		}
	}
	if pcm == nil {
		pcm, err = n.decodeWithFFmpeg(ctx, srcPath, filepath.Join(dir, "decoded.wav"))
		if err != nil {
			return nil, err
		}
	}

	if err := os.Remove(srcPath); err != nil {
		slog.Warn("failed to remove uploaded source", "path", srcPath, "error", err)
	}

	samples := pcm.mono()
	duration := framesToDuration(len(samples), pcm.sampleRate)
	if n.cfg.MaxDuration > 0 && duration > n.cfg.MaxDuration {
		return nil, fmt.Errorf("%w: %.1fs (max %.0fs)", ErrTooLong, duration.Seconds(), n.cfg.MaxDuration.Seconds())
	}

	if req.Enhance {
		samples = Enhance(samples, pcm.sampleRate)
	}

	outPath := filepath.Join(dir, canonicalName)
	if err := writeWAV(outPath, Quantize(samples), pcm.sampleRate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	slog.Debug("audio normalized",
		"id", req.ID,
		"format", mt.String(),
		"sample_rate", pcm.sampleRate,
		"source_channels", pcm.channels,
		"duration_s", duration.Seconds(),
		"enhanced", req.Enhance,
	)

	return &Canonical{
		Path:       outPath,
		Dir:        dir,
		SampleRate: pcm.sampleRate,
		Frames:     len(samples),
		Duration:   duration,
		Format:     mt.String(),
		Enhanced:   req.Enhance,
	}, nil
}

func (n *Normalizer) decodeWithFFmpeg(ctx context.Context, srcPath, outPath string) (*pcmAudio, error) {
	args := buildFFmpegArgs(srcPath, outPath, n.cfg.SampleRate)
	res, err := n.runner.Run(ctx, n.cfg.FFmpegPath, args...)
	if err != nil {
		slog.Debug("ffmpeg failed", "exit_code", res.ExitCode, "stderr", lastLine(res.Stderr))
		return nil, fmt.Errorf("%w: ffmpeg exit %d: %v", ErrUndecodable, res.ExitCode, err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg produced no output: %v", ErrUndecodable, err)
	}
	pcm, err := decodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if err := os.Remove(outPath); err != nil {
		slog.Warn("failed to remove decoded intermediate", "path", outPath, "error", err)
	}
	return pcm, nil
}

// decodableType accepts audio and video containers, and unknown binary data
// which is left to ffmpeg to judge.
func decodableType(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		s := m.String()
		if strings.HasPrefix(s, "audio/") || strings.HasPrefix(s, "video/") || s == "application/ogg" {
			return true
		}
	}
	return mt.Is("application/octet-stream")
}

func sourceFileName(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return "source" + ext
}

func framesToDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
