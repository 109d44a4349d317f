package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const sessionFileName = "session.json"

// FileStore keeps the session in a JSON file on device storage, so it
// survives client restarts. Writes go through a temp file plus rename
// to keep the stored session readable at all times.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed session store under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create session directory %s: %w", dir, err)
	}
	return &FileStore{path: filepath.Join(dir, sessionFileName)}, nil
}

// Persist writes the session to the backing file.
func (s *FileStore) Persist(ctx context.Context, sess Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Retrieve reads the session from the backing file.
func (s *FileStore) Retrieve(ctx context.Context) (Session, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, false, fmt.Errorf("failed to decode session file: %w", err)
	}
	return sess, true, nil
}

// Clear removes the backing file.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Ensure FileStore implements the Store interface.
var _ Store = (*FileStore)(nil)
