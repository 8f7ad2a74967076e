package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const credentialsFile = "credentials.json"

// profile is the on-disk shape of the CLI's local state: the bearer
// credential plus the language preference, the only two things the console
// persists on a device.
type profile struct {
	Token    string `json:"token,omitempty"`
	Language string `json:"language,omitempty"`
}

// FileStore implements Store on a JSON file under the user's home
// directory. It is the CLI's credential persistence: the token survives
// process restarts the way a browser's persistent storage survives reloads.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at ~/.spaconsole.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".spaconsole")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &FileStore{path: filepath.Join(dir, credentialsFile)}, nil
}

// NewFileStoreAt creates a FileStore at an explicit directory. Used by tests.
func NewFileStoreAt(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &FileStore{path: filepath.Join(dir, credentialsFile)}, nil
}

// Get implements Store.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load()
	if err != nil || p.Token == "" {
		return "", false
	}
	return p.Token, true
}

// Set implements Store.
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.load()
	p.Token = token
	return s.save(p)
}

// Clear implements Store. The language preference survives logout.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load()
	if err != nil {
		// Nothing persisted, nothing to clear.
		return nil
	}
	p.Token = ""
	return s.save(p)
}

// Language returns the persisted language preference, or "" when unset.
func (s *FileStore) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load()
	if err != nil {
		return ""
	}
	return p.Language
}

// SetLanguage persists the language preference alongside the credential.
func (s *FileStore) SetLanguage(lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.load()
	p.Language = lang
	return s.save(p)
}

func (s *FileStore) load() (profile, error) {
	var p profile
	data, err := os.ReadFile(s.path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return profile{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return p, nil
}

func (s *FileStore) save(p profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}
