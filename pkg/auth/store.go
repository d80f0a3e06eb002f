package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/montybasquiart/sihiri-build/pkg/config"
)

// SessionFileName is the session file inside the config directory.
const SessionFileName = "session.json"

// SessionStore persists one signed-in session as JSON on disk.
type SessionStore struct {
	path string
}

// NewSessionStore returns a store at path, or at ~/.sihiri/session.json
// when path is empty.
func NewSessionStore(path string) (*SessionStore, error) {
	if path == "" {
		p, err := config.DefaultPath(SessionFileName)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &SessionStore{path: path}, nil
}

// Path returns the session file path.
func (s *SessionStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing file yields nil data and no error.
func (s *SessionStore) Load() (*UserData, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var ud UserData
	if err := json.Unmarshal(data, &ud); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &ud, nil
}

// Save writes the session, readable only by the owner.
func (s *SessionStore) Save(ud *UserData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(ud, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session file.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
