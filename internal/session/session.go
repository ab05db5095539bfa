// Package session holds the authenticated user's session and persists it
// between runs.
//
// A Session is created at login, read by the route guard and every
// authenticated call, and destroyed at logout or on any auth failure. The app
// model is its single owner; components that need the token receive the
// *Session explicitly.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhubert/messly/internal/config"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/logger"
)

// Roles reported by the identity endpoint.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Session is the bearer token plus the identity fields confirmed by /me.
type Session struct {
	Token          string `json:"token"`
	Username       string `json:"username,omitempty"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Description    string `json:"description,omitempty"`

	// Confirmed is set once /me has accepted the token in this run.
	// It is never persisted.
	Confirmed bool `json:"-"`
}

// Valid reports whether the session carries a token.
func (s *Session) Valid() bool {
	return s != nil && s.Token != ""
}

// IsAdmin reports whether the confirmed role is admin.
func (s *Session) IsAdmin() bool {
	return s.Valid() && s.Role == RoleAdmin
}

// Identity is the subset of /me the session caches.
type Identity struct {
	Username       string
	Email          string
	Role           string
	ProfilePicture string
	Description    string
}

// Confirm caches the identity returned by the backend and marks the session confirmed.
func (s *Session) Confirm(id Identity) {
	s.Username = id.Username
	s.Email = id.Email
	s.Role = id.Role
	s.ProfilePicture = id.ProfilePicture
	s.Description = id.Description
	s.Confirmed = true
}

// Store persists a session to a single file readable only by the user.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store at ~/.messly/session.json.
func DefaultStore() (*Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "session.json")), nil
}

// Path returns the file backing the store.
func (st *Store) Path() string {
	return st.path
}

// Load reads the stored session. A missing file yields (nil, nil).
func (st *Store) Load() (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.SessionStoreFailed(st.path, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// treated as no session; the next login overwrites it
		logger.WithComponent("session").Warn("discarding unreadable session file", "path", st.path, "error", err)
		return nil, nil
	}
	if !s.Valid() {
		return nil, nil
	}
	return &s, nil
}

// Save writes the session with mode 0600.
func (st *Store) Save(s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(st.path), 0700); err != nil {
		return errors.SessionStoreFailed(st.path, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.SessionStoreFailed(st.path, err)
	}

	if err := os.WriteFile(st.path, data, 0600); err != nil {
		return errors.SessionStoreFailed(st.path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(st.path, 0600); err != nil {
		return errors.SessionStoreFailed(st.path, err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an error.
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return errors.SessionStoreFailed(st.path, err)
	}
	return nil
}
