package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/chunkhash/pkg/config"
	"github.com/Sumatoshi-tech/chunkhash/pkg/units"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chunkhash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, int64(10*units.MiB), cfg.ChunkSizeBytes())
	assert.Equal(t, int64(units.MiB), cfg.BlockSizeBytes())
	assert.Equal(t, "xxh64", cfg.Defaults.HashProgram)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatText, cfg.Logging.Format)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
defaults:
  chunk_size: 64MiB
  block_size: 4MiB
  hash_program: blake3
logging:
  level: debug
  format: json
telemetry:
  metrics_file: /var/lib/node_exporter/chunkhash.prom
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(64*units.MiB), cfg.ChunkSizeBytes())
	assert.Equal(t, int64(4*units.MiB), cfg.BlockSizeBytes())
	assert.Equal(t, "blake3", cfg.Defaults.HashProgram)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, "/var/lib/node_exporter/chunkhash.prom", cfg.Telemetry.MetricsFile)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("CHUNKHASH_DEFAULTS_CHUNK_SIZE", "2MiB")
	t.Setenv("CHUNKHASH_LOGGING_LEVEL", "warn")
	t.Setenv("CHUNKHASH_TELEMETRY_OTLP_ENDPOINT", "localhost:4317")

	cfg, err := config.LoadConfig(writeConfig(t, "defaults:\n  chunk_size: 8MiB\n"))
	require.NoError(t, err)

	assert.Equal(t, int64(2*units.MiB), cfg.ChunkSizeBytes())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"bad_chunk", "defaults:\n  chunk_size: lots\n", config.ErrInvalidSize},
		{"zero_block", "defaults:\n  block_size: 0\n", config.ErrInvalidSize},
		{"empty_hash", "defaults:\n  hash_program: \"\"\n", config.ErrEmptyHashProgram},
		{"bad_level", "logging:\n  level: chatty\n", config.ErrInvalidLogLevel},
		{"bad_format", "logging:\n  format: xml\n", config.ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDefaultSizesMatchValidatorFallbacks(t *testing.T) {
	t.Parallel()

	chunk, err := config.ParseSize(config.DefaultChunkSize)
	require.NoError(t, err)
	assert.Equal(t, int64(units.DefaultChunkSize), chunk)

	block, err := config.ParseSize(config.DefaultBlockSize)
	require.NoError(t, err)
	assert.Equal(t, int64(units.DefaultBlockSize), block)
}

func TestParseSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want int64
	}{
		{"10485760", 10 * units.MiB},
		{"10MiB", 10 * units.MiB},
		{"1 MiB", units.MiB},
		{"4KiB", 4 * units.KiB},
		{"1GiB", units.GiB},
		{"512", 512},
	}

	for _, tt := range tests {
		got, err := config.ParseSize(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	for _, bad := range []string{"", "0", "ten", "-1"} {
		_, err := config.ParseSize(bad)
		require.ErrorIs(t, err, config.ErrInvalidSize, bad)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	level, err := config.ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = config.ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = config.ParseLogLevel("loud")
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
