package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// StateKey is the fixed name under which the repository state is persisted.
const StateKey = "ghostpin-locations"

// ErrNoState is returned by a BlobStore when no record has been saved yet.
var ErrNoState = errors.New("no persisted state")

// BlobStore persists a single named JSON record. The repository does not care
// what sits underneath as long as Save is durable before it returns.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileStore keeps the record in one file, written atomically via a temp file
// and rename so a crash never leaves a truncated record behind.
type FileStore struct {
	path string
}

// NewFileStore returns a store persisting under dir as "<StateKey>.json".
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, StateKey+".json")}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record, or ErrNoState if it was never saved.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoState
		}
		return nil, err
	}

	return data, nil
}

// Save replaces the record.
func (s *FileStore) Save(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// MemoryStore is an in-process BlobStore used by tests and by callers that
// do not need durability.
type MemoryStore struct {
	data []byte
}

// Load returns the last saved record, or ErrNoState.
func (s *MemoryStore) Load(_ context.Context) ([]byte, error) {
	if s.data == nil {
		return nil, ErrNoState
	}

	return s.data, nil
}

// Save keeps a private copy of the record.
func (s *MemoryStore) Save(_ context.Context, data []byte) error {
	s.data = append([]byte(nil), data...)
	return nil
}
