package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunkhash/pkg/config"
	"github.com/Sumatoshi-tech/chunkhash/pkg/job"
	"github.com/Sumatoshi-tech/chunkhash/pkg/observability"
	"github.com/Sumatoshi-tech/chunkhash/pkg/runner"
	"github.com/Sumatoshi-tech/chunkhash/pkg/safeconv"
)

const shutdownGrace = 5 * time.Second

// RunCommand holds flags for the run command.
type RunCommand struct {
	globals *GlobalOptions

	statePath   string
	chunkSize   sizeValue
	blockSize   sizeValue
	totalSize   sizeValue
	hashProgram string
	stopAfter   int
	metricsFile string
}

// NewRunCommand creates the run command.
func NewRunCommand(globals *GlobalOptions) *cobra.Command {
	rc := &RunCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "run [flags] INPUT OUTPUT",
		Short: "Hash INPUT chunk by chunk into the descriptor log OUTPUT",
		Long: `Hash INPUT (a regular file or block device) in fixed-size chunks and append
one "algorithm digest offset +length" line per chunk to OUTPUT.

With --state, progress is checkpointed after every chunk and a later run with
the same arguments continues where the previous one stopped.`,
		Args: cobra.ExactArgs(2),
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.statePath, "state", "s", "", "Resume state file (empty = not resumable)")
	cmd.Flags().VarP(&rc.chunkSize, "chunk-size", "c", "Chunk size, bytes or humanized (default from settings, 10MiB)")
	cmd.Flags().VarP(&rc.blockSize, "block-size", "b", "Read block size (default from settings, 1MiB)")
	cmd.Flags().VarP(&rc.totalSize, "total-size", "t", "Bytes to cover (default: probed from INPUT)")
	cmd.Flags().StringVarP(&rc.hashProgram, "hash", "H", "", "Hash program: built-in name, alias or executable (default from settings, xxh64)")
	cmd.Flags().IntVarP(&rc.stopAfter, "stop-after", "n", 0, "Stop after hashing N chunks")
	cmd.Flags().StringVar(&rc.metricsFile, "metrics-file", "", "Write Prometheus text metrics to this file at exit")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := rc.globals.loadConfig()
	if err != nil {
		return err
	}

	obsCfg, err := rc.globals.observabilityConfig(cfg, observability.ModeRun, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if rc.metricsFile != "" {
		obsCfg.MetricsFile = rc.metricsFile
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		shutdownErr := providers.Shutdown(ctx)
		if shutdownErr != nil {
			providers.Logger.Error("observability shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var warnings io.Writer
	if !rc.globals.Quiet {
		warnings = cmd.ErrOrStderr()
	}

	result, err := runner.New(runner.Options{
		Params:   rc.params(cmd, cfg, args),
		Logger:   providers.Logger,
		Tracer:   providers.Tracer,
		Metrics:  metrics,
		Warnings: warnings,
	}).Run(ctx)
	if err != nil {
		return err
	}

	if !rc.globals.Quiet {
		printSummary(cmd.OutOrStdout(), result)
	}

	return nil
}

// params layers explicit flags over settings defaults.
func (rc *RunCommand) params(cmd *cobra.Command, cfg *config.Config, args []string) job.Params {
	chunkDefault := cfg.ChunkSizeBytes()
	blockDefault := cfg.BlockSizeBytes()

	params := job.Params{
		InputPath:   args[0],
		OutputPath:  args[1],
		StatePath:   rc.statePath,
		HashProgram: rc.hashProgram,
		ChunkSize:   rc.chunkSize.ptr(&chunkDefault),
		BlockSize:   rc.blockSize.ptr(&blockDefault),
		TotalSize:   rc.totalSize.ptr(nil),
	}

	if params.HashProgram == "" {
		params.HashProgram = cfg.Defaults.HashProgram
	}

	if cmd.Flags().Changed("stop-after") {
		stopAfter := rc.stopAfter
		params.StopAfter = &stopAfter
	}

	return params
}

func printSummary(w io.Writer, result runner.Result) {
	processed := humanize.IBytes(safeconv.MustInt64ToUint64(result.BytesProcessed))
	total := humanize.IBytes(safeconv.MustInt64ToUint64(result.TotalSize))

	switch result.Outcome {
	case runner.PhaseStoppedEarly:
		fmt.Fprintf(w, "stopped after %d chunks: %s of %s covered in %s\n",
			result.Chunks, processed, total, result.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintf(w, "done: %s covered, %d chunks hashed this run in %s\n",
			total, result.Chunks, result.Duration.Round(time.Millisecond))
	}
}
