// Package auth stores the access token between runs and supplies it to the API client.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"internpath/internal/logging"
)

// Credentials is the on-disk credential record.
type Credentials struct {
	BaseURL     string `yaml:"base_url"`
	Email       string `yaml:"email"`
	AccessToken string `yaml:"access_token"`
}

// Store is a YAML-file credential store. It implements api.TokenSource.
type Store struct {
	path string

	mu    sync.RWMutex
	creds Credentials
}

// NewStore opens the store at path. A missing file means logged out.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the credential file location.
func (s *Store) Path() string {
	return s.path
}

// Load re-reads the credential file.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.creds = Credentials{}
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Save writes credentials with owner-only permissions.
func (s *Store) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	logging.Get(logging.CategoryAuth).Info("saved credentials for %s", creds.Email)
	return nil
}

// Clear removes the credential file. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()

	logging.Get(logging.CategoryAuth).Info("cleared credentials")
	return nil
}

// Credentials returns the current record.
func (s *Store) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Token returns the access token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// User decodes the stored token. ok is false when logged out.
func (s *Store) User() (u User, ok bool, err error) {
	tok := s.Token()
	if tok == "" {
		return User{}, false, nil
	}
	u, err = DecodeClaims(tok)
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}
