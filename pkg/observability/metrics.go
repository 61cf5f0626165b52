package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricChunksTotal   = "chunkhash.chunks.total"
	metricBytesTotal    = "chunkhash.bytes.total"
	metricChunkDuration = "chunkhash.chunk.duration.seconds"
	metricRunsTotal     = "chunkhash.runs.total"
	metricProgressBytes = "chunkhash.progress.bytes"

	attrAlgorithm = "algorithm"
	attrOutcome   = "outcome"
)

// durationBucketBoundaries covers 1ms to 10min: small chunks on fast
// digests through multi-GiB chunks on slow devices.
var durationBucketBoundaries = []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// RunMetrics holds the instruments recorded by a hashing run.
type RunMetrics struct {
	chunksTotal   metric.Int64Counter
	bytesTotal    metric.Int64Counter
	chunkDuration metric.Float64Histogram
	runsTotal     metric.Int64Counter
	progress      metric.Int64Gauge
}

// NewRunMetrics creates run instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	chunks, err := mt.Int64Counter(metricChunksTotal,
		metric.WithDescription("Chunks hashed and checkpointed"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunksTotal, err)
	}

	bytesTotal, err := mt.Int64Counter(metricBytesTotal,
		metric.WithDescription("Input bytes hashed"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesTotal, err)
	}

	chunkDur, err := mt.Float64Histogram(metricChunkDuration,
		metric.WithDescription("Per-chunk read, hash, log and checkpoint duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunkDuration, err)
	}

	runs, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Runs by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	progress, err := mt.Int64Gauge(metricProgressBytes,
		metric.WithDescription("Bytes processed according to the last checkpoint"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricProgressBytes, err)
	}

	return &RunMetrics{
		chunksTotal:   chunks,
		bytesTotal:    bytesTotal,
		chunkDuration: chunkDur,
		runsTotal:     runs,
		progress:      progress,
	}, nil
}

// RecordChunk records one checkpointed chunk. Safe on a nil receiver.
func (rm *RunMetrics) RecordChunk(ctx context.Context, algorithm string, length, processed int64, took time.Duration) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrAlgorithm, algorithm))

	rm.chunksTotal.Add(ctx, 1, attrs)
	rm.bytesTotal.Add(ctx, length, attrs)
	rm.chunkDuration.Record(ctx, took.Seconds(), attrs)
	rm.progress.Record(ctx, processed)
}

// RecordProgress records the progress loaded at start. Safe on a nil receiver.
func (rm *RunMetrics) RecordProgress(ctx context.Context, processed int64) {
	if rm == nil {
		return
	}

	rm.progress.Record(ctx, processed)
}

// RecordRun records the terminal outcome of a run. Safe on a nil receiver.
func (rm *RunMetrics) RecordRun(ctx context.Context, outcome string) {
	if rm == nil {
		return
	}

	rm.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}
