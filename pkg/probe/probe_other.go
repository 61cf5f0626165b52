//go:build !linux

package probe

import (
	"fmt"
	"os"
)

func deviceSize(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open device %s: %w", path, err)
	}
	defer f.Close()

	return seekSize(f)
}
