package persist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

const filePerm = 0o644

// WriteFile replaces path with the encoded state. The new content is written
// to a temporary file in the same directory, synced, renamed over path, and
// the directory is synced, so readers observe either the old or the new
// content and the rename survives power loss.
func WriteFile(path string, codec Codec, state any) error {
	var buf bytes.Buffer

	err := codec.Encode(&buf, state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	_, err = tmp.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}

	err = tmp.Chmod(filePerm)
	if err != nil {
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	err = tmp.Sync()
	if err != nil {
		return fmt.Errorf("sync temp state file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	committed = true

	return SyncDir(dir)
}

// ReadFile decodes the content of path into state (a pointer).
func ReadFile(path string, codec Codec, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state %s: %w", path, err)
	}

	return nil
}

// SyncDir fsyncs a directory so entries created or renamed in it are durable.
func SyncDir(dir string) error {
	handle, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir %s: %w", dir, err)
	}
	defer handle.Close()

	err = handle.Sync()
	if err != nil {
		return fmt.Errorf("sync dir %s: %w", dir, err)
	}

	return nil
}
