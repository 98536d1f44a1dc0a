// Package session persists the authenticated identity between CLI runs.
package session

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Session is the client-held identity of the active account. The zero
// value is the anonymous session.
type Session struct {
	LoggedIn bool   `toml:"is_logged_in"`
	UserID   int64  `toml:"user_id"`
	Email    string `toml:"user_email"`
}

// Store reads and writes the session file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the per-user session file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "aniwatch", "session.toml"), nil
}

// Load reads the persisted session. A missing file is the anonymous
// session, not an error.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var sess Session
	if err := toml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return &sess, nil
}

// Save writes the session atomically via a temp file rename, so a
// crash never leaves a half-written identity behind.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(sess); err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Clear drops the whole session file. Flag, identifier and email go
// together; a logout never leaves one of them behind.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
