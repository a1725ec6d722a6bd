package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/billbatista/expensebook/user"
)

// SessionFile stores the session token in a YAML file readable only by its owner.
type SessionFile struct {
	Path string
}

type sessionData struct {
	Token string `yaml:"token"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func (f SessionFile) Token() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session file: %w", err)
	}

	var s sessionData
	if err := yaml.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parsing session file: %w", err)
	}
	return s.Token, nil
}

func (f SessionFile) Save(token string, profile user.Profile) error {
	data, err := yaml.Marshal(sessionData{Token: token, Name: profile.Name, Email: profile.Email})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

func (f SessionFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// MemoryTokens keeps the token in memory only.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokens) Save(token string, _ user.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
