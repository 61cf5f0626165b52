// Package outlog appends chunk descriptors to a durable, append-only text log.
package outlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for descriptor parsing and log checks.
var (
	ErrMalformedLine = errors.New("malformed descriptor line")
	ErrGap           = errors.New("gap in descriptor log")
	ErrOverlap       = errors.New("overlapping descriptors")
	ErrIncomplete    = errors.New("descriptor log does not reach the expected size")
)

// fieldCount is the number of space-separated fields of a descriptor line.
const fieldCount = 4

// Descriptor records the digest of one chunk.
type Descriptor struct {
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	Digest    string `json:"digest" yaml:"digest"`
	Offset    int64  `json:"offset" yaml:"offset"`
	Length    int64  `json:"length" yaml:"length"`
}

// End returns the exclusive end offset covered by the descriptor.
func (d Descriptor) End() int64 {
	return d.Offset + d.Length
}

// Format renders d as "<algorithm> <digest> <offset> +<length>" without a
// trailing newline.
func (d Descriptor) Format() string {
	return d.Algorithm + " " + d.Digest + " " + strconv.FormatInt(d.Offset, 10) + " +" + strconv.FormatInt(d.Length, 10)
}

// validate rejects descriptors that would not parse back.
func (d Descriptor) validate() error {
	switch {
	case d.Algorithm == "" || strings.ContainsAny(d.Algorithm, " \t\r\n"):
		return fmt.Errorf("%w: algorithm %q", ErrMalformedLine, d.Algorithm)
	case d.Digest == "" || strings.ContainsAny(d.Digest, " \t\r\n"):
		return fmt.Errorf("%w: digest %q", ErrMalformedLine, d.Digest)
	case d.Offset < 0 || d.Length <= 0:
		return fmt.Errorf("%w: range %d +%d", ErrMalformedLine, d.Offset, d.Length)
	}

	return nil
}

// Parse reads one descriptor line.
func Parse(line string) (Descriptor, error) {
	fields := strings.Fields(line)
	if len(fields) != fieldCount {
		return Descriptor{}, fmt.Errorf("%w: want %d fields, got %d: %q", ErrMalformedLine, fieldCount, len(fields), line)
	}

	offset, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: offset: %w", ErrMalformedLine, err)
	}

	lengthText, ok := strings.CutPrefix(fields[3], "+")
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: length %q lacks '+'", ErrMalformedLine, fields[3])
	}

	length, err := strconv.ParseInt(lengthText, 10, 64)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: length: %w", ErrMalformedLine, err)
	}

	d := Descriptor{Algorithm: fields[0], Digest: fields[1], Offset: offset, Length: length}

	err = d.validate()
	if err != nil {
		return Descriptor{}, err
	}

	return d, nil
}
