package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gh-tking/mimecast-sdk/internal/fileutil"
)

// FileStore keeps secrets in a JSON file created with 0600 permissions.
// Writes are atomic so a crash mid-save never corrupts the file. It is safe
// for concurrent use within one process; it does not coordinate across
// processes.
type FileStore struct {
	path string

	mu sync.Mutex
}

// NewFileStore creates a store backed by the JSON file at path. The file is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// GetSecret implements Store.
func (s *FileStore) GetSecret(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := data[normalize(name)]
	if !ok || value == "" {
		return "", &notFoundError{name: name, store: s.path}
	}
	return value, nil
}

// SetSecret implements Store.
func (s *FileStore) SetSecret(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[normalize(name)] = value

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("secrets: encoding store: %w", err)
	}
	return fileutil.AtomicWrite(s.path, encoded, 0o600)
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("secrets: reading store: %w", err)
	}

	data := map[string]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("secrets: decoding store %s: %w", s.path, err)
		}
	}
	return data, nil
}
