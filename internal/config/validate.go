package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExtraction() error {
	if len(c.Extraction.Extensions) == 0 {
		return errors.New("extraction.extensions must list at least one extension")
	}
	if c.Extraction.MaxResidentFiles < 1 {
		return errors.New("extraction.max_resident_files must be positive")
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if c.Transcode.TimeoutSeconds < 0 {
		return errors.New("transcode.timeout_seconds must be positive")
	}
	if c.Transcode.SampleRate < 0 {
		return errors.New("transcode.sample_rate must be positive")
	}
	if c.Transcode.FFmpegBinary == "" {
		return errors.New("transcode.ffmpeg_binary must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
