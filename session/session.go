// Package session persists the authenticated identity of the frame
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNoSession = errors.New("not logged in")

// Session is the identity returned by a successful login
type Session struct {
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// file mirrors the on-disk layout. Pointers keep the keys present with null values when logged out.
type file struct {
	Token    *string `json:"token"`
	UserID   *int    `json:"user_id"`
	Username *string `json:"username"`
}

// Load reads the session file. A missing file, or one without all three fields, means logged out.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}

	if f.Token == nil || f.UserID == nil || f.Username == nil || *f.Token == "" {
		return nil, nil
	}

	return &Session{
		Token:    *f.Token,
		UserID:   *f.UserID,
		Username: *f.Username,
	}, nil
}

// Save writes the session file. A nil session is written as all-null fields.
func Save(path string, s *Session) error {
	var f file
	if s != nil {
		f = file{Token: &s.Token, UserID: &s.UserID, Username: &s.Username}
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear persists the logged out state
func Clear(path string) error {
	return Save(path, nil)
}
