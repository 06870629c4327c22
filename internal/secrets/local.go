package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// LocalStore reads credentials from a YAML file on the local filesystem.
// This is intended for development and unattended cron use.
//
// The file is a flat map of credential name to value:
//
//	api-username: "xxxx"
//	api-password: "yyyy"
//	smtp-password: "zzzz"
type LocalStore struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	creds map[string]string
}

// NewLocalStore creates a file-backed store. If path is empty, it defaults
// to ~/.datto-check/credentials.yaml. The file is loaded once, lazily.
func NewLocalStore(path string, logger *slog.Logger) (*LocalStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".datto-check", "credentials.yaml")
	}

	logger.Info("using local credentials file", "path", path)

	return &LocalStore{
		path:   path,
		logger: logger,
	}, nil
}

// Get returns the named credential from the file, or ErrNotFound.
func (s *LocalStore) Get(_ context.Context, name string) (string, error) {
	if err := s.load(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.creds[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s (file %s): %w", name, s.path, ErrNotFound)
}

// Close drops the cached credentials.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	s.creds = nil
	s.mu.Unlock()
	return nil
}

func (s *LocalStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading credentials file: %w", err)
	}

	creds := make(map[string]string)
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parsing credentials file: %w", err)
	}
	s.creds = creds
	return nil
}
