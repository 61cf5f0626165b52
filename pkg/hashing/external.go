package hashing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// external runs a digest program, feeding the range on stdin and taking the
// first field of its stdout as the digest, as `md5sum -` or `xxh64sum -` print.
type external struct {
	name string
	path string
	args []string
}

func (e *external) Name() string {
	return e.name
}

func (e *external) Digest(ctx context.Context, src io.Reader) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.path, e.args...)
	cmd.Stdin = src
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("run %s: %w: %s", e.name, err, msg)
		}

		return "", fmt.Errorf("run %s: %w", e.name, err)
	}

	fields := strings.Fields(stdout.String())
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyDigest, e.name)
	}

	return fields[0], nil
}
