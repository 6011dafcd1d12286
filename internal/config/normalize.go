package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeTranscode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	// Relative output dirs stay relative; they are resolved per input file.
	out := strings.TrimSpace(c.Paths.OutputDir)
	if strings.HasPrefix(out, "~") || filepath.IsAbs(out) {
		if out, err = expandPath(out); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	} else if out != "" {
		out = filepath.Clean(out)
	}
	c.Paths.OutputDir = out

	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	exts := make([]string, 0, len(c.Extraction.Extensions))
	seen := make(map[string]struct{}, len(c.Extraction.Extensions))
	for _, ext := range c.Extraction.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultExtension}
	}
	c.Extraction.Extensions = exts
	if c.Extraction.MaxResidentFiles <= 0 {
		c.Extraction.MaxResidentFiles = defaultMaxResidentFiles
	}
}

func (c *Config) normalizeTranscode() {
	c.Transcode.FFmpegBinary = strings.TrimSpace(c.Transcode.FFmpegBinary)
	if c.Transcode.FFmpegBinary == "" {
		c.Transcode.FFmpegBinary = defaultFFmpegBinary
	}
	c.Transcode.Codec = strings.ToLower(strings.TrimSpace(c.Transcode.Codec))
	if c.Transcode.Codec == "" {
		c.Transcode.Codec = defaultCodec
	}
	if c.Transcode.TimeoutSeconds == 0 {
		c.Transcode.TimeoutSeconds = defaultTranscodeTimeout
	}
	if c.Transcode.SampleRate == 0 {
		c.Transcode.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
