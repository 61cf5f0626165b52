// Package commands implements CLI command handlers for chunkhash.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/chunkhash/pkg/config"
	"github.com/Sumatoshi-tech/chunkhash/pkg/observability"
	"github.com/Sumatoshi-tech/chunkhash/pkg/version"
)

// NewRootCommand assembles the chunkhash command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chunkhash",
		Short: "Resumable chunked hashing of large files and block devices",
		Long: `chunkhash splits an input into fixed-size chunks, hashes each one and
appends a descriptor line per chunk to an output log. With --state the run
can be interrupted and resumed without gaps.

Commands:
  run       Hash an input into a descriptor log
  plan      Show the chunk tiling a run would produce
  status    Inspect persisted progress and verify a log`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	globals := BindGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewRunCommand(globals))
	rootCmd.AddCommand(NewPlanCommand(globals))
	rootCmd.AddCommand(NewStatusCommand(globals))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chunkhash %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

// GlobalOptions holds the persistent flags shared by all subcommands.
type GlobalOptions struct {
	ConfigPath   string
	LogLevel     string
	LogJSON      bool
	OTLPEndpoint string
	OTLPInsecure bool
	Quiet        bool
}

// BindGlobalFlags registers the persistent flags on fs.
func BindGlobalFlags(fs *pflag.FlagSet) *GlobalOptions {
	g := &GlobalOptions{}

	fs.StringVar(&g.ConfigPath, "config", "", "Settings file (default: ./chunkhash.yaml, ~/.config/chunkhash, /etc/chunkhash)")
	fs.StringVar(&g.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default from settings)")
	fs.BoolVar(&g.LogJSON, "log-json", false, "Emit JSON logs")
	fs.StringVar(&g.OTLPEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for traces and metrics")
	fs.BoolVar(&g.OTLPInsecure, "otlp-insecure", false, "Disable TLS for OTLP export")
	fs.BoolVarP(&g.Quiet, "quiet", "q", false, "Suppress progress output and warnings")

	return g
}

func (g *GlobalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return cfg, nil
}

// inspectLogger builds the logger for read-only commands. They export no
// telemetry, so only the logging settings apply.
func (g *GlobalOptions) inspectLogger(cfg *config.Config, logOutput io.Writer) (*slog.Logger, error) {
	obsCfg, err := g.observabilityConfig(cfg, observability.ModeInspect, logOutput)
	if err != nil {
		return nil, err
	}

	return observability.NewLogger(obsCfg), nil
}

// observabilityConfig merges flags over settings. Flags win when given.
func (g *GlobalOptions) observabilityConfig(
	cfg *config.Config, mode observability.AppMode, logOutput io.Writer,
) (observability.Config, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogOutput = logOutput
	obsCfg.LogJSON = g.LogJSON || cfg.Logging.Format == config.LogFormatJSON
	obsCfg.OTLPInsecure = g.OTLPInsecure || cfg.Telemetry.OTLPInsecure
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile

	obsCfg.OTLPEndpoint = g.OTLPEndpoint
	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}

	headers := cfg.Telemetry.OTLPHeaders
	if headers == "" {
		headers = os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")
	}

	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(headers)

	levelName := g.LogLevel
	if levelName == "" {
		levelName = cfg.Logging.Level
	}

	level, err := config.ParseLogLevel(levelName)
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg.LogLevel = level

	if g.Quiet {
		obsCfg.LogLevel = max(obsCfg.LogLevel, quietLevel)
	}

	return obsCfg, nil
}
