// Package observability provides OpenTelemetry tracing and metrics and
// structured logging for chunkhash.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// AppMode identifies the subcommand the binary runs.
type AppMode string

const (
	// ModeRun is a hashing run.
	ModeRun AppMode = "run"
	// ModeInspect covers read-only commands (plan, status).
	ModeInspect AppMode = "inspect"
)

const (
	defaultServiceName        = "chunkhash"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables OTLP export.
	OTLPEndpoint string

	OTLPHeaders map[string]string

	OTLPInsecure bool

	// MetricsFile, when set, receives a Prometheus text exposition of all
	// metrics at shutdown (node_exporter textfile collector format).
	MetricsFile string

	LogLevel slog.Level

	LogJSON bool

	// LogOutput defaults to stderr; stdout is reserved for command output.
	LogOutput io.Writer

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeRun,
		LogLevel:           slog.LevelInfo,
		LogOutput:          os.Stderr,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
