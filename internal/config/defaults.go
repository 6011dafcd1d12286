package config

const (
	defaultConfigPath       = "~/.config/stringpuller/config.toml"
	projectConfigName       = "stringpuller.toml"
	historyFileName         = "history.db"
	defaultOutputDir        = "extracted_ac3"
	defaultLogDir           = "~/.local/share/stringpuller/logs"
	defaultStateDir         = "~/.local/share/stringpuller"
	defaultExtension        = ".sgb"
	defaultMaxResidentFiles = 2
	defaultFFmpegBinary     = "ffmpeg"
	defaultTranscodeTimeout = 60
	defaultSampleRate       = 44100
	defaultCodec            = "pcm_s16le"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Extraction: Extraction{
			Extensions:       []string{defaultExtension},
			MaxResidentFiles: defaultMaxResidentFiles,
			GapRecovery:      true,
		},
		Transcode: Transcode{
			FFmpegBinary:   defaultFFmpegBinary,
			TimeoutSeconds: defaultTranscodeTimeout,
			SampleRate:     defaultSampleRate,
			Codec:          defaultCodec,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
