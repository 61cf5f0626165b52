package persist

import (
	"errors"
	"os"
)

// Persister handles I/O for a specific state type at a fixed path.
type Persister[T any] struct {
	path  string
	codec Codec
}

// NewPersister creates a persister for path with the given codec.
func NewPersister[T any](path string, codec Codec) *Persister[T] {
	return &Persister[T]{
		path:  path,
		codec: codec,
	}
}

// Path returns the file the persister owns.
func (p *Persister[T]) Path() string {
	return p.path
}

// Save atomically replaces the file with state.
func (p *Persister[T]) Save(state *T) error {
	return WriteFile(p.path, p.codec, state)
}

// Load reads the file. found is false, with a nil error, when the file does
// not exist yet.
func (p *Persister[T]) Load() (state T, found bool, err error) {
	err = ReadFile(p.path, p.codec, &state)
	if errors.Is(err, os.ErrNotExist) {
		return state, false, nil
	}

	if err != nil {
		return state, false, err
	}

	return state, true, nil
}
