//go:build linux

package probe

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Sumatoshi-tech/chunkhash/pkg/safeconv"
)

// deviceSize asks the kernel for the block device size in bytes.
func deviceSize(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open device %s: %w", path, err)
	}
	defer f.Close()

	var size uint64

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		// Character devices and some virtual block devices reject BLKGETSIZE64.
		return seekSize(f)
	}

	signed, err := safeconv.Uint64ToInt64(size)
	if err != nil {
		return 0, fmt.Errorf("device %s: %w", path, err)
	}

	return signed, nil
}
