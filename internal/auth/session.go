package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// Session is the signed-in user of the CLI and TUI.
type Session struct {
	UserID      string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Provider    string    `json:"provider"`
	SignedInAt  time.Time `json:"signedInAt"`
}

// NewSession creates a session for user signed in now.
func NewSession(user *models.User) Session {
	return Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Provider:    user.Provider,
		SignedInAt:  time.Now().UTC(),
	}
}

// SessionStore persists one [Session] as a JSON file.
type SessionStore struct {
	fs   afero.Fs
	path string
}

// NewSessionStore creates a store writing to path on fs.
func NewSessionStore(fs afero.Fs, path string) *SessionStore {
	return &SessionStore{fs: fs, path: path}
}

// Path returns the session file location
func (s *SessionStore) Path() string { return s.path }

// Save writes the session, readable only by the current user.
func (s *SessionStore) Save(session Session) error {
	if session.UserID == "" {
		return fmt.Errorf("%w: session has no user", shared.ErrInvalidInput)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load reads the session, failing with [shared.ErrNotAuthenticated] when nobody is signed in.
func (s *SessionStore) Load() (*Session, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: corrupt session file: %w", shared.ErrNotAuthenticated, err)
	}
	if session.UserID == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &session, nil
}

// Clear signs the user out. Clearing an absent session is not an error.
func (s *SessionStore) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
