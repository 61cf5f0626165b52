// Package safeconv provides checked integer conversions for byte counts.
package safeconv

import (
	"errors"
	"fmt"
	"math"
)

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

// Uint64ToInt64 converts an unsigned byte count (as returned by size
// parsers and ioctls) to int64.
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d exceeds int64", ErrOverflow, v)
	}

	return int64(v), nil
}

// MustInt64ToInt converts int64 to int, panics on bounds violation.
// Use only when the value is already bounded, e.g. a validated block size.
func MustInt64ToInt(v int64) int {
	if v < 0 || v > int64(MaxInt) {
		panic("safeconv: int64 to int out of bounds")
	}

	return int(v)
}

// MustInt64ToUint64 converts int64 to uint64, panics if negative.
func MustInt64ToUint64(v int64) uint64 {
	if v < 0 {
		panic("safeconv: negative int64 to uint64 conversion")
	}

	return uint64(v)
}
