package outlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

const logPerm = 0o644

// Writer appends descriptors to a log file. Existing content is never
// truncated or rewritten.
type Writer struct {
	file *os.File
}

// Open opens (creating if needed) the log at path for appending.
func Open(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, logPerm)
	if err != nil {
		return nil, fmt.Errorf("open output log: %w", err)
	}

	return &Writer{file: file}, nil
}

// Append writes d as a single line in one write call and syncs the file
// before returning.
func (w *Writer) Append(d Descriptor) error {
	err := d.validate()
	if err != nil {
		return err
	}

	line := d.Format() + "\n"

	_, err = w.file.WriteString(line)
	if err != nil {
		return fmt.Errorf("append descriptor: %w", err)
	}

	err = w.file.Sync()
	if err != nil {
		return fmt.Errorf("sync output log: %w", err)
	}

	return nil
}

// Close closes the log file.
func (w *Writer) Close() error {
	err := w.file.Close()
	if err != nil {
		return fmt.Errorf("close output log: %w", err)
	}

	return nil
}

// ReadAll parses every line of r.
func ReadAll(r io.Reader) ([]Descriptor, error) {
	var descriptors []Descriptor

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		if len(scanner.Bytes()) == 0 {
			continue
		}

		d, err := Parse(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		descriptors = append(descriptors, d)
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read output log: %w", err)
	}

	return descriptors, nil
}

// ReadFile parses the log at path. A missing file is an empty log.
func ReadFile(path string) ([]Descriptor, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("open output log: %w", err)
	}
	defer file.Close()

	return ReadAll(file)
}
