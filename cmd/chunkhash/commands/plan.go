package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/chunkhash/pkg/checkpoint"
	"github.com/Sumatoshi-tech/chunkhash/pkg/config"
	"github.com/Sumatoshi-tech/chunkhash/pkg/plan"
	"github.com/Sumatoshi-tech/chunkhash/pkg/probe"
	"github.com/Sumatoshi-tech/chunkhash/pkg/safeconv"
)

// Plan output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

// PlanReport is the machine-readable plan output.
type PlanReport struct {
	Input     string       `json:"input"      yaml:"input"`
	TotalSize int64        `json:"total_size" yaml:"total_size"`
	ChunkSize int64        `json:"chunk_size" yaml:"chunk_size"`
	Processed int64        `json:"processed"  yaml:"processed"`
	Chunks    []plan.Chunk `json:"chunks"     yaml:"chunks"`
}

// PlanCommand holds flags for the plan command.
type PlanCommand struct {
	globals *GlobalOptions

	statePath string
	chunkSize sizeValue
	totalSize sizeValue
	format    string
	sizer     probe.Sizer
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(globals *GlobalOptions) *cobra.Command {
	pc := &PlanCommand{globals: globals, sizer: probe.Default}

	cmd := &cobra.Command{
		Use:   "plan [flags] INPUT",
		Short: "Show the chunks a run would hash",
		Long:  "Show the chunk tiling of INPUT. With --state, chunks already covered are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE:  pc.run,
	}

	cmd.Flags().StringVarP(&pc.statePath, "state", "s", "", "Resume state file to start from")
	cmd.Flags().VarP(&pc.chunkSize, "chunk-size", "c", "Chunk size (default from settings, 10MiB)")
	cmd.Flags().VarP(&pc.totalSize, "total-size", "t", "Bytes to cover (default: probed from INPUT)")
	cmd.Flags().StringVarP(&pc.format, "format", "f", FormatTable, "Output format: table, json, yaml")

	return cmd
}

func (pc *PlanCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := pc.globals.loadConfig()
	if err != nil {
		return err
	}

	logger, err := pc.globals.inspectLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	report, err := pc.build(cfg, args[0])
	if err != nil {
		return err
	}

	logger.DebugContext(cmd.Context(), "plan built",
		"input", report.Input, "total", report.TotalSize,
		"processed", report.Processed, "chunks", len(report.Chunks))

	return renderPlan(cmd.OutOrStdout(), report, pc.format)
}

func (pc *PlanCommand) build(cfg *config.Config, input string) (PlanReport, error) {
	var err error

	chunkDefault := cfg.ChunkSizeBytes()
	report := PlanReport{Input: input, ChunkSize: *pc.chunkSize.ptr(&chunkDefault)}

	if total := pc.totalSize.ptr(nil); total != nil {
		report.TotalSize = *total
	} else {
		report.TotalSize, err = pc.sizer.Size(input)
		if err != nil {
			return PlanReport{}, fmt.Errorf("probe %s: %w", input, err)
		}
	}

	if pc.statePath != "" {
		report.Processed, err = checkpoint.NewFileStore(pc.statePath).Load()
		if err != nil {
			return PlanReport{}, err
		}

		err = checkpoint.ValidateProgress(report.Processed, report.TotalSize, report.ChunkSize)
		if err != nil {
			return PlanReport{}, err
		}
	}

	report.Chunks, err = plan.All(report.TotalSize, report.ChunkSize, report.Processed)
	if err != nil {
		return PlanReport{}, err
	}

	return report, nil
}

func renderPlan(w io.Writer, report PlanReport, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(report)
		if err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()

		err := enc.Encode(report)
		if err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}

		return nil
	case FormatTable:
		fmt.Fprintln(w, planTable(report))

		return nil
	default:
		return fmt.Errorf("%w: %q (want %s, %s or %s)", ErrUnknownFormat, format, FormatTable, FormatJSON, FormatYAML)
	}
}

func planTable(report PlanReport) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"#", "Offset", "Length", "End", "Last"})

	for _, c := range report.Chunks {
		tbl.AppendRow(table.Row{c.Index, c.Offset, humanize.IBytes(safeconv.MustInt64ToUint64(c.Length)), c.End(), c.Last})
	}

	remaining := report.TotalSize - report.Processed

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d of %d chunks", len(report.Chunks), plan.Count(report.TotalSize, report.ChunkSize)),
		"", humanize.IBytes(safeconv.MustInt64ToUint64(remaining)), "", "",
	})

	return tbl.Render()
}
