// Package probe resolves the byte size of an input file or block device.
package probe

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrEmptyInput is returned when the probed size is zero.
var ErrEmptyInput = errors.New("input is empty")

// Sizer reports the total byte size of an input path.
type Sizer interface {
	Size(path string) (int64, error)
}

// SizerFunc adapts a function to the Sizer interface.
type SizerFunc func(path string) (int64, error)

// Size implements Sizer.
func (f SizerFunc) Size(path string) (int64, error) {
	return f(path)
}

// Default probes regular files through metadata and block devices through
// the OS size query.
var Default Sizer = SizerFunc(Size)

// Size returns the size of the file or device at path.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	var size int64

	switch {
	case info.Mode()&os.ModeDevice != 0:
		size, err = deviceSize(path)
		if err != nil {
			return 0, err
		}
	case info.Mode().IsRegular():
		size = info.Size()
	default:
		return 0, fmt.Errorf("%s: unsupported file type %s", path, info.Mode().Type())
	}

	if size == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyInput, path)
	}

	return size, nil
}

// seekSize is the portable fallback for devices: the end offset of the
// opened device node.
func seekSize(f *os.File) (int64, error) {
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek %s: %w", f.Name(), err)
	}

	return end, nil
}
