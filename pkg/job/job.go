// Package job validates raw run parameters into an immutable Job.
package job

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/chunkhash/pkg/hashing"
	"github.com/Sumatoshi-tech/chunkhash/pkg/probe"
	"github.com/Sumatoshi-tech/chunkhash/pkg/units"
)

// Sentinel validation errors, wrapped by ConfigError.
var (
	ErrInvalidChunkSize      = errors.New("chunk size must be positive")
	ErrInvalidBlockSize      = errors.New("block size must be positive")
	ErrInvalidTotalSize      = errors.New("total size must be positive")
	ErrInvalidStopAfter      = errors.New("stop-after must be positive")
	ErrMissingPath           = errors.New("input and output paths are required")
	ErrChunkSmallerThanBlock = errors.New("chunk size is smaller than block size")
	ErrChunkLargerThanTotal  = errors.New("chunk size is larger than total size")
	ErrTotalNotBlockMultiple = errors.New("total size is not a multiple of block size")
	ErrProbeFailed           = errors.New("cannot determine input size")
	ErrUnknownHashProgram    = errors.New("unknown hash program")
)

// ConfigError is a fatal configuration problem detected before any chunk is
// hashed.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return e.Reason
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// configErrorf builds a ConfigError whose reason is the formatted message.
func configErrorf(sentinel error, format string, args ...any) *ConfigError {
	return &ConfigError{
		Reason: fmt.Sprintf("%s: %s", sentinel, fmt.Sprintf(format, args...)),
		Err:    sentinel,
	}
}

// Wrap turns err into a ConfigError unless it already is one.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}

	return &ConfigError{Reason: err.Error(), Err: err}
}

// Warning is an advisory that does not change how the job runs.
type Warning struct {
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Params is the raw caller input. Optional options are nil or empty.
type Params struct {
	InputPath  string
	OutputPath string
	// StatePath is the resume state location; empty disables resume.
	StatePath string
	// HashProgram defaults to hashing.DefaultProgram when empty.
	HashProgram string
	// ChunkSize and BlockSize default to units.DefaultChunkSize / DefaultBlockSize when nil.
	ChunkSize *int64
	BlockSize *int64
	// TotalSize is probed from the input when nil.
	TotalSize *int64
	// StopAfter bounds the number of chunks hashed by this invocation.
	StopAfter *int
}

// Job is a validated, immutable run configuration.
type Job struct {
	inputPath   string
	outputPath  string
	statePath   string
	hashProgram string
	chunkSize   int64
	blockSize   int64
	totalSize   int64
	stopAfter   int
}

// InputPath returns the file or device to hash.
func (j Job) InputPath() string { return j.inputPath }

// OutputPath returns the descriptor log path.
func (j Job) OutputPath() string { return j.outputPath }

// StatePath returns the resume state path, empty when not resumable.
func (j Job) StatePath() string { return j.statePath }

// Resumable reports whether progress is persisted.
func (j Job) Resumable() bool { return j.statePath != "" }

// HashProgram returns the hash program identifier.
func (j Job) HashProgram() string { return j.hashProgram }

// ChunkSize returns the chunk size in bytes.
func (j Job) ChunkSize() int64 { return j.chunkSize }

// BlockSize returns the read block size in bytes.
func (j Job) BlockSize() int64 { return j.blockSize }

// TotalSize returns the number of bytes to cover.
func (j Job) TotalSize() int64 { return j.totalSize }

// StopAfter returns the chunk limit for this invocation and whether one is set.
func (j Job) StopAfter() (int, bool) { return j.stopAfter, j.stopAfter > 0 }

// Resolver validates Params. Its zero value is not usable; use NewResolver.
type Resolver struct {
	sizer   probe.Sizer
	resolve func(program string) (hashing.Primitive, error)
}

// NewResolver returns a resolver that probes sizes with sizer.
func NewResolver(sizer probe.Sizer) *Resolver {
	return &Resolver{sizer: sizer, resolve: hashing.Resolve}
}

// Resolve validates p with the default size probe.
func Resolve(p Params) (Job, []Warning, error) {
	return NewResolver(probe.Default).Resolve(p)
}

// Resolve validates p, applying defaults once. Checks run in a fixed order so
// the first failing relationship is the one reported.
func (r *Resolver) Resolve(p Params) (Job, []Warning, error) {
	var warnings []Warning

	j := Job{
		inputPath:   p.InputPath,
		outputPath:  p.OutputPath,
		statePath:   p.StatePath,
		hashProgram: p.HashProgram,
		chunkSize:   valueOr(p.ChunkSize, units.DefaultChunkSize),
		blockSize:   valueOr(p.BlockSize, units.DefaultBlockSize),
	}

	if j.hashProgram == "" {
		j.hashProgram = hashing.DefaultProgram
	}

	err := j.checkBasics(p)
	if err != nil {
		return Job{}, nil, err
	}

	if j.chunkSize < j.blockSize {
		return Job{}, nil, configErrorf(ErrChunkSmallerThanBlock, "chunk %d < block %d", j.chunkSize, j.blockSize)
	}

	if j.chunkSize%j.blockSize != 0 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"chunk size %d is not a multiple of block size %d", j.chunkSize, j.blockSize)})
	}

	j.totalSize, err = r.totalSize(p)
	if err != nil {
		return Job{}, nil, err
	}

	if j.chunkSize > j.totalSize {
		return Job{}, nil, configErrorf(ErrChunkLargerThanTotal, "chunk %d > total %d", j.chunkSize, j.totalSize)
	}

	if j.totalSize%j.blockSize != 0 {
		return Job{}, nil, configErrorf(ErrTotalNotBlockMultiple, "total %d %% block %d = %d",
			j.totalSize, j.blockSize, j.totalSize%j.blockSize)
	}

	_, err = r.resolve(j.hashProgram)
	if err != nil {
		return Job{}, nil, &ConfigError{Reason: err.Error(), Err: errors.Join(ErrUnknownHashProgram, err)}
	}

	return j, warnings, nil
}

func (j *Job) checkBasics(p Params) error {
	if j.chunkSize <= 0 {
		return configErrorf(ErrInvalidChunkSize, "got %d", j.chunkSize)
	}

	if j.blockSize <= 0 {
		return configErrorf(ErrInvalidBlockSize, "got %d", j.blockSize)
	}

	if j.inputPath == "" || j.outputPath == "" {
		return configErrorf(ErrMissingPath, "input=%q output=%q", j.inputPath, j.outputPath)
	}

	if p.StopAfter != nil {
		if *p.StopAfter <= 0 {
			return configErrorf(ErrInvalidStopAfter, "got %d", *p.StopAfter)
		}

		j.stopAfter = *p.StopAfter
	}

	return nil
}

func (r *Resolver) totalSize(p Params) (int64, error) {
	if p.TotalSize != nil {
		if *p.TotalSize <= 0 {
			return 0, configErrorf(ErrInvalidTotalSize, "got %d", *p.TotalSize)
		}

		return *p.TotalSize, nil
	}

	size, err := r.sizer.Size(p.InputPath)
	if err != nil {
		return 0, &ConfigError{Reason: fmt.Sprintf("%s: %v", ErrProbeFailed, err), Err: errors.Join(ErrProbeFailed, err)}
	}

	return size, nil
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}

	return *v
}
