package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Session holds the bearer credential for the current login. It is passed
// into whatever owns the editor rather than living in a package global, so
// tearing it down on auth failure is one Clear call away.
type Session interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// MemorySession keeps the token in memory only.
type MemorySession struct {
	mu    sync.Mutex
	token string
}

func NewMemorySession() *MemorySession { return &MemorySession{} }

func (s *MemorySession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemorySession) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemorySession) Clear() error {
	return s.SetToken("")
}

// FileSession persists the token to a file so separate CLI invocations
// share one login.
type FileSession struct {
	path string
}

// NewFileSession stores the token at path. The parent directory is
// created on first write.
func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

// DefaultSessionPath is the token location used by the CLI.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "blankpage", "token"), nil
}

func (s *FileSession) Token() string {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *FileSession) SetToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileSession) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
