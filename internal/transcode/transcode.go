// Package transcode converts extracted AC3 streams to PCM WAV with ffmpeg.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stringpuller/internal/config"
	"stringpuller/internal/fileutil"
	"stringpuller/internal/logging"
	"stringpuller/internal/services"
)

var commandContext = exec.CommandContext

// WAVSubdir is created inside the AC3 directory to hold converted files.
const WAVSubdir = "wav_converted"

// MinOutputBytes is the size a converted file must exceed to count as valid.
const MinOutputBytes = 1000

const versionProbeTimeout = 5 * time.Second

var (
	// ErrToolMissing reports that the ffmpeg binary could not be executed.
	ErrToolMissing = fmt.Errorf("%w: ffmpeg unavailable", services.ErrNotFound)
	// ErrFailed reports a non-zero exit, a timeout, or an undersized output.
	ErrFailed = fmt.Errorf("%w: transcode failed", services.ErrExternalTool)
)

// Option configures a Converter.
type Option func(*Converter)

// WithBinary overrides the ffmpeg executable.
func WithBinary(binary string) Option {
	return func(c *Converter) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout bounds each conversion.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSampleRate sets the output sample rate in Hz.
func WithSampleRate(hz int) Option {
	return func(c *Converter) {
		if hz > 0 {
			c.sampleRate = hz
		}
	}
}

// WithCodec sets the PCM codec passed to -acodec.
func WithCodec(codec string) Option {
	return func(c *Converter) {
		if codec = strings.TrimSpace(codec); codec != "" {
			c.codec = codec
		}
	}
}

// WithLogger sets the converter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Converter wraps the ffmpeg command line.
type Converter struct {
	binary     string
	codec      string
	sampleRate int
	timeout    time.Duration
	logger     *slog.Logger
}

// New constructs a Converter using ffmpeg defaults: pcm_s16le at 44.1 kHz
// with a 60 second limit per file.
func New(opts ...Option) *Converter {
	c := &Converter{
		binary:     "ffmpeg",
		codec:      "pcm_s16le",
		sampleRate: 44100,
		timeout:    60 * time.Second,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "transcoder")
	return c
}

// NewFromConfig builds a Converter from the [transcode] section.
func NewFromConfig(cfg config.Transcode, logger *slog.Logger) *Converter {
	return New(
		WithBinary(cfg.FFmpegBinary),
		WithCodec(cfg.Codec),
		WithSampleRate(cfg.SampleRate),
		WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		WithLogger(logger),
	)
}

// Binary returns the configured ffmpeg executable.
func (c *Converter) Binary() string {
	return c.binary
}

// Available runs "ffmpeg -version" and returns ErrToolMissing when it fails.
func (c *Converter) Available(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	cmd := commandContext(ctx, c.binary, "-version") //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%w: %s", ErrToolMissing, detail)
	}
	return nil
}

// Convert transcodes in to out and returns the size of the written file.
func (c *Converter) Convert(ctx context.Context, in, out string) (int64, error) {
	if strings.TrimSpace(in) == "" || strings.TrimSpace(out) == "" {
		return 0, fmt.Errorf("%w: input and output paths required", services.ErrValidation)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{
		"-i", in,
		"-acodec", c.codec,
		"-ar", strconv.Itoa(c.sampleRate),
		"-y",
		out,
	}
	cmd := commandContext(runCtx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
			return 0, fmt.Errorf("%w: %w", ErrToolMissing, err)
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return 0, fmt.Errorf("%w: %w: exceeded %s", ErrFailed, services.ErrTimeout, c.timeout)
		case ctx.Err() != nil:
			return 0, ctx.Err()
		default:
			return 0, fmt.Errorf("%w: %s: %w", ErrFailed, lastLine(stderr.String()), err)
		}
	}

	ok, size, err := fileutil.SizeAbove(out, MinOutputBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: stat output: %w", ErrFailed, err)
	}
	if !ok {
		return size, fmt.Errorf("%w: invalid output (%d bytes)", ErrFailed, size)
	}
	return size, nil
}

// Result is the outcome of converting one file.
type Result struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Bytes  int64  `json:"bytes"`
	Err    error  `json:"-"`
}

// WAVPath returns where ConvertAll writes the WAV for input.
func WAVPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), WAVSubdir, base+".wav")
}

// ConvertAll converts every input into a wav_converted directory beside it.
// A failing file is recorded on its Result and the rest still run; only a
// cancelled context stops the loop early.
func (c *Converter) ConvertAll(ctx context.Context, inputs []string) []Result {
	results := make([]Result, 0, len(inputs))
	for i, in := range inputs {
		res := Result{Input: in, Output: WAVPath(in)}
		if err := ctx.Err(); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		logger := logging.WithContext(services.WithStage(services.WithSource(ctx, in), "transcode"), c.logger)
		if err := os.MkdirAll(filepath.Dir(res.Output), 0o755); err != nil {
			res.Err = fmt.Errorf("create wav directory: %w", err)
		} else {
			res.Bytes, res.Err = c.Convert(ctx, in, res.Output)
		}

		if res.Err != nil {
			logging.WarnWithContext(logger, "conversion failed", "transcode_failed",
				logging.Int("index", i+1),
				logging.Int("total", len(inputs)),
				logging.Error(res.Err),
				logging.String(logging.FieldImpact, "AC3 file kept; WAV not produced"),
			)
		} else {
			logger.Info("converted",
				logging.Int("index", i+1),
				logging.Int("total", len(inputs)),
				logging.String("output", filepath.Base(res.Output)),
				logging.Int64("bytes", res.Bytes),
			)
		}
		results = append(results, res)
	}
	return results
}

// ListAC3 returns the .ac3 files directly inside dir, sorted by name.
func ListAC3(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.ac3"))
	if err != nil {
		return nil, fmt.Errorf("list ac3 files: %w", err)
	}
	return matches, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "ffmpeg exited with an error"
	}
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}
