// Package plan partitions a byte range into fixed-size chunks.
//
// All functions are pure. The caller owns the progress value; the planner
// only maps (total, chunk, processed) to the next chunk to hash.
package plan

import (
	"errors"
	"fmt"
)

// Sentinel errors for planner arguments.
var (
	ErrInvalidSize = errors.New("sizes must be positive")
	ErrOutOfRange  = errors.New("processed bytes out of range")
	ErrMisaligned  = errors.New("processed bytes not on a chunk boundary")
)

// Chunk is one contiguous byte range of the input.
type Chunk struct {
	Offset int64 `json:"offset" yaml:"offset"`
	Length int64 `json:"length" yaml:"length"`
	// Index is 1-based. Informational only.
	Index int64 `json:"index" yaml:"index"`
	// Total is the number of chunks in the whole input. Informational only.
	Total int64 `json:"total" yaml:"total"`
	Last  bool  `json:"last" yaml:"last"`
}

// End returns the exclusive end offset of the chunk.
func (c Chunk) End() int64 {
	return c.Offset + c.Length
}

// Count returns ceil(total / chunk).
func Count(total, chunk int64) int64 {
	if total <= 0 || chunk <= 0 {
		return 0
	}

	return (total + chunk - 1) / chunk
}

// Next returns the chunk that starts at processed. Only whole chunks are
// resumed: processed must be a multiple of chunk and less than total.
func Next(total, chunk, processed int64) (Chunk, error) {
	if total <= 0 || chunk <= 0 {
		return Chunk{}, fmt.Errorf("%w: total=%d chunk=%d", ErrInvalidSize, total, chunk)
	}

	if processed < 0 || processed >= total {
		return Chunk{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, processed, total)
	}

	if processed%chunk != 0 {
		return Chunk{}, fmt.Errorf("%w: %d %% %d = %d", ErrMisaligned, processed, chunk, processed%chunk)
	}

	length := min(chunk, total-processed)

	return Chunk{
		Offset: processed,
		Length: length,
		Index:  processed/chunk + 1,
		Total:  Count(total, chunk),
		Last:   processed+length == total,
	}, nil
}

// All returns the complete tiling of [from, total). from must satisfy the
// same constraints as processed in Next, or equal total.
func All(total, chunk, from int64) ([]Chunk, error) {
	if from == total && total > 0 {
		return nil, nil
	}

	chunks := make([]Chunk, 0, Count(total-from, chunk))

	for processed := from; processed < total; {
		next, err := Next(total, chunk, processed)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, next)
		processed = next.End()
	}

	return chunks, nil
}
