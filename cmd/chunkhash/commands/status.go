package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunkhash/pkg/checkpoint"
	"github.com/Sumatoshi-tech/chunkhash/pkg/outlog"
	"github.com/Sumatoshi-tech/chunkhash/pkg/safeconv"
)

// StatusCommand holds flags for the status command.
type StatusCommand struct {
	globals   *GlobalOptions
	statePath string
}

// NewStatusCommand creates the status command.
func NewStatusCommand(globals *GlobalOptions) *cobra.Command {
	sc := &StatusCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "status --state STATE [OUTPUT]",
		Short: "Report persisted progress and check that a log covers it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sc.run,
	}

	cmd.Flags().StringVarP(&sc.statePath, "state", "s", "", "Resume state file")
	_ = cmd.MarkFlagRequired("state")

	return cmd
}

func (sc *StatusCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := sc.globals.loadConfig()
	if err != nil {
		return err
	}

	logger, err := sc.globals.inspectLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	store := checkpoint.NewFileStore(sc.statePath)

	processed, err := store.Load()
	if err != nil {
		return err
	}

	meta, found, err := store.LoadMetadata()
	if err != nil {
		return err
	}

	logger.DebugContext(cmd.Context(), "state loaded",
		"state", store.Path(), "processed", processed, "metadata", found)

	fmt.Fprintf(out, "state:     %s\n", store.Path())
	fmt.Fprintf(out, "processed: %s (%d bytes)\n", humanize.IBytes(safeconv.MustInt64ToUint64(processed)), processed)

	if found {
		printMetadata(out, meta, processed)
	}

	if len(args) == 0 {
		return nil
	}

	descriptors, err := outlog.ReadFile(args[0])
	if err != nil {
		return err
	}

	logger.DebugContext(cmd.Context(), "log read", "output", args[0], "descriptors", len(descriptors))

	coverage, err := outlog.CheckTiling(descriptors, 0)
	if err == nil && coverage.Covered < processed {
		err = fmt.Errorf("%w: log covers %d of %d checkpointed bytes", outlog.ErrIncomplete, coverage.Covered, processed)
	}

	if err != nil {
		color.New(color.FgRed).Fprintf(out, "log:       %s does not cover the recorded progress\n", args[0])

		return err
	}

	color.New(color.FgGreen).Fprintf(out, "log:       %d descriptors cover %s", len(descriptors),
		humanize.IBytes(safeconv.MustInt64ToUint64(coverage.Covered)))

	if coverage.Duplicates > 0 {
		color.New(color.FgYellow).Fprintf(out, " (%d re-hashed after interruption)", coverage.Duplicates)
	}

	// A crash between log append and checkpoint leaves one chunk ahead of
	// the state; the next run hashes it again.
	if coverage.Covered > processed {
		color.New(color.FgYellow).Fprintf(out, " (%s ahead of checkpoint)",
			humanize.IBytes(safeconv.MustInt64ToUint64(coverage.Covered-processed)))
	}

	fmt.Fprintln(out)

	return nil
}

func printMetadata(out io.Writer, meta checkpoint.Metadata, processed int64) {
	fmt.Fprintf(out, "input:     %s\n", meta.InputPath)
	fmt.Fprintf(out, "hash:      %s\n", meta.HashProgram)
	fmt.Fprintf(out, "chunk:     %s\n", humanize.IBytes(safeconv.MustInt64ToUint64(meta.ChunkSize)))
	fmt.Fprintf(out, "total:     %s\n", humanize.IBytes(safeconv.MustInt64ToUint64(meta.TotalSize)))
	fmt.Fprintf(out, "created:   %s\n", meta.CreatedAt)

	if meta.TotalSize > 0 {
		fmt.Fprintf(out, "complete:  %.1f%%\n", float64(processed)*100/float64(meta.TotalSize))
	}
}
