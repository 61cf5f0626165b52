// Package blockio streams a byte range of a random-access source in
// fixed-size block reads.
package blockio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/chunkhash/pkg/safeconv"
)

// Sentinel errors for range reads.
var (
	ErrInvalidRange = errors.New("invalid byte range")
	ErrShortRead    = errors.New("short read")
)

// RangeReader reads exactly Length bytes starting at Offset from a
// [io.ReaderAt], issuing one ReadAt per block. Hitting end-of-source
// before Length bytes is reported as [ErrShortRead], never as io.EOF,
// so a truncated input cannot produce a digest.
type RangeReader struct {
	ctx       context.Context //nolint:containedctx // read loop is driven by io.Reader callers.
	src       io.ReaderAt
	buf       []byte
	offset    int64
	remaining int64
	pending   []byte
}

// NewRangeReader returns a reader over [offset, offset+length) of src.
func NewRangeReader(ctx context.Context, src io.ReaderAt, offset, length, blockSize int64) (*RangeReader, error) {
	if offset < 0 || length <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("%w: offset=%d length=%d block=%d", ErrInvalidRange, offset, length, blockSize)
	}

	return &RangeReader{
		ctx:       ctx,
		src:       src,
		buf:       make([]byte, safeconv.MustInt64ToInt(min(blockSize, length))),
		offset:    offset,
		remaining: length,
	}, nil
}

// Read implements io.Reader.
func (r *RangeReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.remaining == 0 {
			return 0, io.EOF
		}

		err := r.fill()
		if err != nil {
			return 0, err
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]

	return n, nil
}

// WriteTo implements io.WriterTo so io.Copy hands whole blocks to dst.
func (r *RangeReader) WriteTo(dst io.Writer) (int64, error) {
	var written int64

	for len(r.pending) > 0 || r.remaining > 0 {
		if len(r.pending) == 0 {
			err := r.fill()
			if err != nil {
				return written, err
			}
		}

		n, err := dst.Write(r.pending)
		written += int64(n)
		r.pending = r.pending[n:]

		// Returned unwrapped: os/exec recognises EPIPE from a stdin copy
		// only by its concrete *fs.PathError.
		if err != nil {
			return written, err //nolint:wrapcheck
		}
	}

	return written, nil
}

// fill reads the next block into buf.
func (r *RangeReader) fill() error {
	err := r.ctx.Err()
	if err != nil {
		return fmt.Errorf("read at %d: %w", r.offset, err)
	}

	want := min(int64(len(r.buf)), r.remaining)
	block := r.buf[:want]

	n, err := r.src.ReadAt(block, r.offset)
	if int64(n) < want {
		if err == nil || errors.Is(err, io.EOF) {
			err = ErrShortRead
		}

		return fmt.Errorf("read %d bytes at %d (got %d): %w", want, r.offset, n, err)
	}

	r.pending = block
	r.offset += want
	r.remaining -= want

	return nil
}

// Remaining returns how many bytes of the range have not been read yet.
func (r *RangeReader) Remaining() int64 {
	return r.remaining + int64(len(r.pending))
}
