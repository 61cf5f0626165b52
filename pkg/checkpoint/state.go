// Package checkpoint persists run progress so an interrupted run can resume
// at the last durably logged chunk boundary.
package checkpoint

import (
	"errors"
	"fmt"
)

// MetadataVersion is the current sidecar metadata format version.
const MetadataVersion = 1

// metadataSuffix is appended to the state path to name the sidecar file.
const metadataSuffix = ".meta.json"

// Sentinel errors for loaded state validation.
var (
	ErrCorruptState = errors.New("corrupt progress state")
	ErrJobMismatch  = errors.New("state belongs to a different job")
)

// Metadata describes the job a state file belongs to. It is written next to
// the state file so a resume with different parameters is refused instead of
// producing a log that mixes two tilings.
type Metadata struct {
	Version     int    `json:"version"`
	InputPath   string `json:"input_path"`
	HashProgram string `json:"hash_program"`
	ChunkSize   int64  `json:"chunk_size"`
	BlockSize   int64  `json:"block_size"`
	TotalSize   int64  `json:"total_size"`
	CreatedAt   string `json:"created_at"`
}

// MetadataPath returns the sidecar path for a state path.
func MetadataPath(statePath string) string {
	return statePath + metadataSuffix
}

// Validate reports whether a state recorded under m can be resumed by a job
// described by current. CreatedAt and Version are not compared.
func (m Metadata) Validate(current Metadata) error {
	switch {
	case m.InputPath != current.InputPath:
		return fmt.Errorf("%w: input %q, got %q", ErrJobMismatch, m.InputPath, current.InputPath)
	case m.HashProgram != current.HashProgram:
		return fmt.Errorf("%w: hash program %q, got %q", ErrJobMismatch, m.HashProgram, current.HashProgram)
	case m.ChunkSize != current.ChunkSize:
		return fmt.Errorf("%w: chunk size %d, got %d", ErrJobMismatch, m.ChunkSize, current.ChunkSize)
	case m.TotalSize != current.TotalSize:
		return fmt.Errorf("%w: total size %d, got %d", ErrJobMismatch, m.TotalSize, current.TotalSize)
	}

	return nil
}

// ValidateProgress checks that processed can be a resume point for a job:
// within [0, total] and either on a chunk boundary or exactly total.
func ValidateProgress(processed, total, chunk int64) error {
	if processed < 0 || processed > total {
		return fmt.Errorf("%w: %d bytes processed, total is %d", ErrCorruptState, processed, total)
	}

	if processed != total && processed%chunk != 0 {
		return fmt.Errorf("%w: %d bytes processed is not a multiple of chunk size %d", ErrCorruptState, processed, chunk)
	}

	return nil
}
