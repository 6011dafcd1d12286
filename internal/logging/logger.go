package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stringpuller/internal/config"
)

// LogFileName is the file written inside the configured log directory.
const LogFileName = "stringpuller.log"

// Options describes logger construction parameters. Output wins over Path;
// with neither set records go to stderr.
type Options struct {
	Level       string
	Format      string
	Output      io.Writer
	Path        string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.Development || level.Level() <= slog.LevelDebug

	w := opts.Output
	if w == nil {
		var err error
		if w, err = openOutput(opts.Path); err != nil {
			return nil, err
		}
	}

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		return slog.New(newConsoleHandler(w, level, addSource)), nil
	case "json":
		return slog.New(newJSONHandler(w, level, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig builds the CLI logger: terminal output in logging.format on
// stderr, plus a JSON copy appended to log_dir/stringpuller.log when a log
// directory is configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}

	terminal, err := New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}
	dir := strings.TrimSpace(cfg.Paths.LogDir)
	if dir == "" {
		return terminal, nil
	}

	file, err := openOutput(filepath.Join(dir, LogFileName))
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Logging.Level))
	return TeeLogger(terminal, newJSONHandler(file, level, false)), nil
}

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// parseLevel falls back to info for unknown names.
func parseLevel(name string) slog.Level {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return slog.LevelInfo
}

func openOutput(path string) (io.Writer, error) {
	switch path = strings.TrimSpace(path); path {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
