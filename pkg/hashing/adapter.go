package hashing

import (
	"context"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/chunkhash/pkg/blockio"
)

// RangeHasher computes the digest of one byte range of the job input.
type RangeHasher interface {
	HashRange(ctx context.Context, offset, length int64) (string, error)
}

// Adapter binds an opened input and a Primitive. It is the only place the
// run touches input bytes.
type Adapter struct {
	input     *os.File
	primitive Primitive
	blockSize int64
}

// Open opens inputPath read-only and resolves program.
func Open(inputPath, program string, blockSize int64) (*Adapter, error) {
	primitive, err := Resolve(program)
	if err != nil {
		return nil, err
	}

	input, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	return &Adapter{
		input:     input,
		primitive: primitive,
		blockSize: blockSize,
	}, nil
}

// HashRange streams exactly length bytes at offset through the primitive.
func (a *Adapter) HashRange(ctx context.Context, offset, length int64) (string, error) {
	reader, err := blockio.NewRangeReader(ctx, a.input, offset, length, a.blockSize)
	if err != nil {
		return "", err
	}

	digest, err := a.primitive.Digest(ctx, reader)
	if err != nil {
		return "", fmt.Errorf("hash [%d,+%d): %w", offset, length, err)
	}

	// External programs may stop reading early; a digest of fewer bytes
	// than the range must never be logged.
	if left := reader.Remaining(); left != 0 {
		return "", fmt.Errorf("hash [%d,+%d): %w: %d bytes unread", offset, length, blockio.ErrShortRead, left)
	}

	return digest, nil
}

// Algorithm returns the identifier recorded in descriptors.
func (a *Adapter) Algorithm() string {
	return a.primitive.Name()
}

// Close releases the input.
func (a *Adapter) Close() error {
	err := a.input.Close()
	if err != nil {
		return fmt.Errorf("close input: %w", err)
	}

	return nil
}
