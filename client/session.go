package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// AppName is the application directory name under the config root.
	AppName = "kindly"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"
)

// ErrNoSession is returned by Restore when no session file exists.
var ErrNoSession = errors.New("no stored session")

// sessionState is the on-disk session format.
type sessionState struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Session holds the authenticated identity for a client and persists it to
// a JSON file so later runs can resume without re-entering credentials.
type Session struct {
	client *Client
	path   string

	mu   sync.Mutex
	user *User
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// NewSession creates a Session persisting under configDir. If configDir is
// empty, DefaultConfigDir is used.
func NewSession(c *Client, configDir string) *Session {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Session{
		client: c,
		path:   filepath.Join(dir, SessionFile),
	}
}

// User returns the signed-in user, or nil when signed out.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	clone := *s.user
	return &clone
}

// SignUp registers a new account, signs in as it, and persists the session.
func (s *Session) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	result, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(result)
}

// SignIn authenticates and persists the session.
func (s *Session) SignIn(ctx context.Context, email, password string) (*User, error) {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(result)
}

func (s *Session) adopt(result *AuthResult) (*User, error) {
	s.client.SetToken(result.Token)

	s.mu.Lock()
	user := result.User
	s.user = &user
	s.mu.Unlock()

	if err := s.persist(result.Token, result.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	clone := user
	return &clone, nil
}

// Restore loads a persisted session and re-validates its token against the
// server. An invalid or expired token clears the stored session.
func (s *Session) Restore(ctx context.Context) (*User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		_ = s.Clear()
		return nil, fmt.Errorf("parse session file: %w", err)
	}

	s.client.SetToken(state.Token)

	user, err := s.client.Me(ctx)
	if err != nil {
		// The token is stale; drop it rather than retrying forever.
		_ = s.Clear()
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	clone := *user
	return &clone, nil
}

// Clear signs out: the token is dropped and the session file removed.
func (s *Session) Clear() error {
	s.client.SetToken("")

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *Session) persist(token string, user User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sessionState{Token: token, User: user}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}
