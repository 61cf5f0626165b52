// Package config loads chunkhash settings from a YAML file, CHUNKHASH_*
// environment variables, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/chunkhash/pkg/safeconv"
)

// Sentinel validation errors.
var (
	ErrInvalidSize      = errors.New("invalid size")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrEmptyHashProgram = errors.New("default hash program must not be empty")
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// envPrefix scopes environment overrides, e.g. CHUNKHASH_DEFAULTS_CHUNK_SIZE.
const envPrefix = "CHUNKHASH"

// Config holds all chunkhash settings.
type Config struct {
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DefaultsConfig holds job defaults applied when a flag is not given.
type DefaultsConfig struct {
	ChunkSize   string `mapstructure:"chunk_size"`
	BlockSize   string `mapstructure:"block_size"`
	HashProgram string `mapstructure:"hash_program"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds trace and metric export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	MetricsFile  string `mapstructure:"metrics_file"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches the standard locations; a missing file there
// is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("chunkhash")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/chunkhash")
		viperCfg.AddConfigPath("/etc/chunkhash")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("defaults.chunk_size", DefaultChunkSize)
	viperCfg.SetDefault("defaults.block_size", DefaultBlockSize)
	viperCfg.SetDefault("defaults.hash_program", DefaultHashProgram)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", LogFormatText)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.metrics_file", "")
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	_, err := ParseSize(config.Defaults.ChunkSize)
	if err != nil {
		return fmt.Errorf("defaults.chunk_size: %w", err)
	}

	_, err = ParseSize(config.Defaults.BlockSize)
	if err != nil {
		return fmt.Errorf("defaults.block_size: %w", err)
	}

	if strings.TrimSpace(config.Defaults.HashProgram) == "" {
		return ErrEmptyHashProgram
	}

	_, err = ParseLogLevel(config.Logging.Level)
	if err != nil {
		return err
	}

	switch config.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}

// ChunkSizeBytes returns the parsed default chunk size.
func (c *Config) ChunkSizeBytes() int64 {
	size, _ := ParseSize(c.Defaults.ChunkSize) // validated in LoadConfig.

	return size
}

// BlockSizeBytes returns the parsed default block size.
func (c *Config) BlockSizeBytes() int64 {
	size, _ := ParseSize(c.Defaults.BlockSize) // validated in LoadConfig.

	return size
}

// ParseSize parses a byte size such as "10485760", "10MiB" or "4 KB".
// Zero is rejected.
func ParseSize(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)

	parsed, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidSize, raw, err)
	}

	if parsed == 0 {
		return 0, fmt.Errorf("%w: %q is zero", ErrInvalidSize, raw)
	}

	size, err := safeconv.Uint64ToInt64(parsed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidSize, raw, err)
	}

	return size, nil
}

// ParseLogLevel maps a level name (debug, info, warn, error) to a slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(name))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
	}

	return level, nil
}
