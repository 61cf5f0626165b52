package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/chunkhash/pkg/checkpoint"
	"github.com/Sumatoshi-tech/chunkhash/pkg/hashing"
	"github.com/Sumatoshi-tech/chunkhash/pkg/job"
	"github.com/Sumatoshi-tech/chunkhash/pkg/observability"
	"github.com/Sumatoshi-tech/chunkhash/pkg/outlog"
	"github.com/Sumatoshi-tech/chunkhash/pkg/plan"
	"github.com/Sumatoshi-tech/chunkhash/pkg/probe"
	"github.com/Sumatoshi-tech/chunkhash/pkg/safeconv"
)

const tracerName = "github.com/Sumatoshi-tech/chunkhash/runner"

// Hasher digests byte ranges of the job input.
type Hasher interface {
	hashing.RangeHasher
	Algorithm() string
	Close() error
}

// resumer is implemented by stores that record which job they belong to.
type resumer interface {
	Resume(current checkpoint.Metadata) (int64, error)
}

// Options configures a Runner. Only Params is required.
type Options struct {
	Params job.Params

	// Sizer probes the input when Params.TotalSize is nil.
	Sizer probe.Sizer

	// OpenHasher defaults to opening the input through hashing.Open.
	OpenHasher func(j job.Job) (Hasher, error)

	// OpenStore defaults to checkpoint.Open.
	OpenStore func(statePath string) checkpoint.Store

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.RunMetrics

	// Warnings, when set, receives advisories highlighted for a terminal.
	Warnings io.Writer
}

// Runner executes one invocation of a job.
type Runner struct {
	opts     Options
	resolver *job.Resolver
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// New returns a Runner with defaults applied.
func New(opts Options) *Runner {
	if opts.Sizer == nil {
		opts.Sizer = probe.Default
	}

	if opts.OpenHasher == nil {
		opts.OpenHasher = openAdapter
	}

	if opts.OpenStore == nil {
		opts.OpenStore = checkpoint.Open
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &Runner{
		opts:     opts,
		resolver: job.NewResolver(opts.Sizer),
		logger:   logger,
		tracer:   tracer,
		now:      time.Now,
	}
}

func openAdapter(j job.Job) (Hasher, error) {
	return hashing.Open(j.InputPath(), j.HashProgram(), j.BlockSize())
}

// Run validates the job, resumes from durable progress and processes chunks
// until the input is covered, the stop-after bound is hit, or a step fails.
// Configuration problems are returned as *job.ConfigError before any chunk
// work; chunk failures as *ChunkError.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	result := Result{StartedAt: r.now()}

	ctx, span := r.tracer.Start(ctx, "chunkhash.run")
	defer span.End()

	err := r.run(ctx, &result)

	result.Duration = r.now().Sub(result.StartedAt)

	if err != nil {
		result.Outcome = PhaseFailed

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(
		attribute.String("run.outcome", string(result.Outcome)),
		attribute.Int64("run.bytes_processed", result.BytesProcessed),
		attribute.Int("run.chunks", result.Chunks),
	)

	r.opts.Metrics.RecordRun(ctx, string(result.Outcome))

	return result, err
}

func (r *Runner) run(ctx context.Context, result *Result) error {
	result.Outcome = PhaseValidating

	j, warnings, err := r.resolver.Resolve(r.opts.Params)
	if err != nil {
		return err
	}

	result.TotalSize = j.TotalSize()
	r.reportWarnings(ctx, warnings)

	result.Outcome = PhaseLoading

	store, processed, err := r.load(ctx, j)
	if err != nil {
		return err
	}

	result.ResumedFrom = processed
	result.BytesProcessed = processed

	if processed >= j.TotalSize() {
		r.logger.InfoContext(ctx, "input already covered", "state", j.StatePath(),
			"total", humanize.IBytes(safeconv.MustInt64ToUint64(j.TotalSize())))

		result.Outcome = PhaseDone

		return nil
	}

	result.Outcome = PhaseIterating

	return r.iterate(ctx, j, store, result)
}

// load reads progress for the job and validates it against the job.
func (r *Runner) load(ctx context.Context, j job.Job) (checkpoint.Store, int64, error) {
	store := r.opts.OpenStore(j.StatePath())

	var (
		processed int64
		err       error
	)

	if rs, ok := store.(resumer); ok {
		var meta checkpoint.Metadata

		meta, err = jobMetadata(j)
		if err != nil {
			return nil, 0, job.Wrap(err)
		}

		processed, err = rs.Resume(meta)
	} else {
		processed, err = store.Load()
	}

	if err != nil {
		return nil, 0, job.Wrap(err)
	}

	err = checkpoint.ValidateProgress(processed, j.TotalSize(), j.ChunkSize())
	if err != nil {
		return nil, 0, job.Wrap(err)
	}

	r.opts.Metrics.RecordProgress(ctx, processed)

	msg := "starting"
	if processed > 0 {
		msg = "resuming"
	}

	r.logger.InfoContext(ctx, msg,
		"processed", humanize.IBytes(safeconv.MustInt64ToUint64(processed)),
		"total", humanize.IBytes(safeconv.MustInt64ToUint64(j.TotalSize())))

	return store, processed, nil
}

// jobMetadata describes j for the state sidecar. The input path is absolute
// so the same file resumes whatever the working directory or spelling.
func jobMetadata(j job.Job) (checkpoint.Metadata, error) {
	input, err := filepath.Abs(j.InputPath())
	if err != nil {
		return checkpoint.Metadata{}, fmt.Errorf("resolve input path: %w", err)
	}

	return checkpoint.Metadata{
		InputPath:   input,
		HashProgram: j.HashProgram(),
		ChunkSize:   j.ChunkSize(),
		BlockSize:   j.BlockSize(),
		TotalSize:   j.TotalSize(),
	}, nil
}

func (r *Runner) iterate(ctx context.Context, j job.Job, store checkpoint.Store, result *Result) (err error) {
	hasher, err := r.opts.OpenHasher(j)
	if err != nil {
		return fmt.Errorf("open hasher: %w", err)
	}

	defer func() {
		err = errors.Join(err, hasher.Close())
	}()

	writer, err := outlog.Open(j.OutputPath())
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, writer.Close())
	}()

	remaining, bounded := j.StopAfter()
	processed := result.BytesProcessed

	r.logger.InfoContext(ctx, "hashing",
		"input", j.InputPath(),
		"algorithm", hasher.Algorithm(),
		"chunk", humanize.IBytes(safeconv.MustInt64ToUint64(j.ChunkSize())),
		"chunks", plan.Count(j.TotalSize(), j.ChunkSize()))

	for processed < j.TotalSize() {
		if bounded && remaining == 0 {
			result.Outcome = PhaseStoppedEarly

			r.logger.InfoContext(ctx, "stopped early", "chunks", result.Chunks,
				"processed", humanize.IBytes(safeconv.MustInt64ToUint64(processed)))

			return nil
		}

		chunk, err := plan.Next(j.TotalSize(), j.ChunkSize(), processed)
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}

		err = ctx.Err()
		if err != nil {
			return &ChunkError{Phase: PhaseIterating, Offset: chunk.Offset, Length: chunk.Length, Err: err}
		}

		err = r.processChunk(ctx, hasher, writer, store, chunk)
		if err != nil {
			return err
		}

		processed = chunk.End()
		result.BytesProcessed = processed
		result.Chunks++
		remaining--
	}

	result.Outcome = PhaseDone

	r.logger.InfoContext(ctx, "done", "chunks", result.Chunks,
		"total", humanize.IBytes(safeconv.MustInt64ToUint64(j.TotalSize())))

	return nil
}

// processChunk hashes, logs and checkpoints one chunk in that order. The
// checkpoint is saved only once the descriptor is durable.
func (r *Runner) processChunk(
	ctx context.Context, hasher Hasher, writer *outlog.Writer, store checkpoint.Store, chunk plan.Chunk,
) error {
	started := time.Now()

	ctx, span := r.tracer.Start(ctx, "chunkhash.chunk", trace.WithAttributes(
		attribute.Int64("chunk.index", chunk.Index),
		attribute.Int64("chunk.offset", chunk.Offset),
		attribute.Int64("chunk.length", chunk.Length),
		attribute.Bool("chunk.last", chunk.Last),
	))
	defer span.End()

	fail := func(phase Phase, err error) error {
		chunkErr := &ChunkError{Phase: phase, Offset: chunk.Offset, Length: chunk.Length, Err: err}

		span.RecordError(chunkErr)
		span.SetStatus(codes.Error, chunkErr.Error())

		return chunkErr
	}

	digest, err := hasher.HashRange(ctx, chunk.Offset, chunk.Length)
	if err != nil {
		return fail(PhaseHashing, err)
	}

	err = writer.Append(outlog.Descriptor{
		Algorithm: hasher.Algorithm(),
		Digest:    digest,
		Offset:    chunk.Offset,
		Length:    chunk.Length,
	})
	if err != nil {
		return fail(PhaseLogging, err)
	}

	err = store.Save(chunk.End())
	if err != nil {
		return fail(PhaseCheckpointing, err)
	}

	took := time.Since(started)

	r.opts.Metrics.RecordChunk(ctx, hasher.Algorithm(), chunk.Length, chunk.End(), took)

	r.logger.DebugContext(ctx, "chunk",
		"index", chunk.Index, "of", chunk.Total,
		"offset", chunk.Offset, "length", chunk.Length,
		"digest", digest, "took", took)

	return nil
}

func (r *Runner) reportWarnings(ctx context.Context, warnings []job.Warning) {
	for _, w := range warnings {
		r.logger.WarnContext(ctx, w.Message)

		if r.opts.Warnings != nil {
			color.New(color.FgYellow).Fprintf(r.opts.Warnings, "warning: %s\n", w)
		}
	}
}
