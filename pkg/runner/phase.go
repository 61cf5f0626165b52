// Package runner drives a validated job through its chunks: hash, log,
// checkpoint, repeat.
package runner

import (
	"fmt"
	"time"
)

// Phase is a run controller state. Done, StoppedEarly and Failed end a run.
type Phase string

// Run controller phases.
const (
	PhaseValidating    Phase = "validating"
	PhaseLoading       Phase = "loading"
	PhaseIterating     Phase = "iterating"
	PhaseHashing       Phase = "hashing"
	PhaseLogging       Phase = "logging"
	PhaseCheckpointing Phase = "checkpointing"
	PhaseDone          Phase = "done"
	PhaseStoppedEarly  Phase = "stopped_early"
	PhaseFailed        Phase = "failed"
)

// Result summarises one invocation.
type Result struct {
	Outcome Phase
	// BytesProcessed is the durable progress when the run ended.
	BytesProcessed int64
	// ResumedFrom is the progress loaded at start.
	ResumedFrom int64
	TotalSize   int64
	StartedAt   time.Time
	// Chunks counts chunks completed by this invocation.
	Chunks   int
	Duration time.Duration
}

// ChunkError is a fatal read, hash, log or checkpoint failure. The chunk it
// names has no descriptor unless Phase is PhaseCheckpointing.
type ChunkError struct {
	Phase  Phase
	Offset int64
	Length int64
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s chunk at %d (+%d): %v", e.Phase, e.Offset, e.Length, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
