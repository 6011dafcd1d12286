package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// OutputDir is where extracted streams land. Relative values are
	// resolved against each input file's directory; empty means the input
	// directory itself.
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Extraction controls which files are scanned and how many are held in
// memory at once.
type Extraction struct {
	Extensions       []string `toml:"extensions"`
	MaxResidentFiles int      `toml:"max_resident_files"`
	GapRecovery      bool     `toml:"gap_recovery"`
}

// Transcode configures the optional ffmpeg AC3 to WAV conversion.
type Transcode struct {
	Enabled        bool   `toml:"enabled"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SampleRate     int    `toml:"sample_rate"`
	Codec          string `toml:"codec"`
}

// History toggles the SQLite run history.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for StringPuller.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Transcode  Transcode  `toml:"transcode"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OutputDirFor returns the directory streams extracted from inputPath are written to.
func (c *Config) OutputDirFor(inputPath string) string {
	inputDir := filepath.Dir(inputPath)
	out := strings.TrimSpace(c.Paths.OutputDir)
	switch {
	case out == "":
		return inputDir
	case filepath.IsAbs(out):
		return out
	default:
		return filepath.Join(inputDir, out)
	}
}

// HistoryPath is the SQLite database location under the state directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, historyFileName)
}

// MatchesExtension reports whether path carries one of the configured
// container extensions. Comparison ignores case.
func (c *Config) MatchesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, want := range c.Extraction.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
