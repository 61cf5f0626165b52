package checkpoint

import (
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/chunkhash/pkg/persist"
)

// Store loads and saves the bytes-processed counter.
type Store interface {
	// Load returns the persisted progress, 0 when nothing was persisted.
	Load() (int64, error)
	// Save durably replaces the persisted progress. It must only be called
	// after the descriptor for the covered chunk is durable.
	Save(bytesProcessed int64) error
}

// Open returns a file-backed store for statePath, or a no-op store when
// statePath is empty (the run is not resumable).
func Open(statePath string) Store {
	if statePath == "" {
		return NopStore{}
	}

	return NewFileStore(statePath)
}

// NopStore always starts from zero and persists nothing.
type NopStore struct{}

// Load implements Store.
func (NopStore) Load() (int64, error) { return 0, nil }

// Save implements Store.
func (NopStore) Save(int64) error { return nil }

// FileStore keeps progress as decimal text and job metadata as a JSON sidecar.
type FileStore struct {
	progress *persist.Persister[int64]
	meta     *persist.Persister[Metadata]
}

// NewFileStore creates a store for statePath.
func NewFileStore(statePath string) *FileStore {
	return &FileStore{
		progress: persist.NewPersister[int64](statePath, persist.NewDecimalCodec()),
		meta:     persist.NewPersister[Metadata](MetadataPath(statePath), persist.NewJSONCodec()),
	}
}

// Path returns the state file path.
func (s *FileStore) Path() string {
	return s.progress.Path()
}

// Load implements Store.
func (s *FileStore) Load() (int64, error) {
	processed, _, err := s.progress.Load()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	return processed, nil
}

// Save implements Store.
func (s *FileStore) Save(bytesProcessed int64) error {
	err := s.progress.Save(&bytesProcessed)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	return nil
}

// LoadMetadata returns the sidecar metadata; found is false when absent.
func (s *FileStore) LoadMetadata() (meta Metadata, found bool, err error) {
	meta, found, err = s.meta.Load()
	if err != nil {
		return Metadata{}, false, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	return meta, found, nil
}

// Resume returns the persisted progress for the job described by current.
// A sidecar recorded next to existing progress must match current. Without
// progress the run starts at 0 and the sidecar is rewritten for current, so a
// deleted state file really starts over.
func (s *FileStore) Resume(current Metadata) (int64, error) {
	processed, found, err := s.progress.Load()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	if found {
		recorded, metaFound, metaErr := s.LoadMetadata()
		if metaErr != nil {
			return 0, metaErr
		}

		if metaFound {
			err = recorded.Validate(current)
			if err != nil {
				return 0, err
			}

			return processed, nil
		}
	}

	err = s.saveMetadata(current)
	if err != nil {
		return 0, err
	}

	return processed, nil
}

func (s *FileStore) saveMetadata(current Metadata) error {
	current.Version = MetadataVersion
	if current.CreatedAt == "" {
		current.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	err := s.meta.Save(&current)
	if err != nil {
		return fmt.Errorf("save checkpoint metadata: %w", err)
	}

	return nil
}
