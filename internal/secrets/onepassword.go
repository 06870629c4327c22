package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/1Password/connect-sdk-go/connect"
)

// OnePasswordStore reads credentials from 1Password via the Connect API.
//
// Each credential is an item in the configured vault whose title matches
// the credential name; the value is taken from the item's "credential" or
// "password" field.
//
// Configuration is via environment variables:
//   - OP_CONNECT_HOST: URL of the 1Password Connect server
//   - OP_CONNECT_TOKEN: Access token for the Connect server
//   - OP_VAULT_ID: UUID of the vault holding the credentials
type OnePasswordStore struct {
	client  connect.Client
	vaultID string
	logger  *slog.Logger

	// Cache to avoid repeated API calls within a run.
	mu    sync.RWMutex
	cache map[string]string
}

// OnePasswordConfig holds configuration for 1Password Connect.
type OnePasswordConfig struct {
	Host    string // OP_CONNECT_HOST
	Token   string // OP_CONNECT_TOKEN
	VaultID string // OP_VAULT_ID
}

// NewOnePasswordStore creates a 1Password-backed credential store.
func NewOnePasswordStore(cfg OnePasswordConfig, logger *slog.Logger) (*OnePasswordStore, error) {
	if cfg.Host == "" || cfg.Token == "" || cfg.VaultID == "" {
		return nil, fmt.Errorf("1Password configuration incomplete: host, token, and vault_id are required")
	}

	client := connect.NewClientWithUserAgent(cfg.Host, cfg.Token, "datto-check")

	return &OnePasswordStore{
		client:  client,
		vaultID: cfg.VaultID,
		logger:  logger,
		cache:   make(map[string]string),
	}, nil
}

// Get returns the named credential from the vault, or ErrNotFound.
func (s *OnePasswordStore) Get(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	if cached, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	items, err := s.client.GetItemsByTitle(name, s.vaultID)
	if err != nil {
		if isNotFoundError(err) {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("listing items: %w", err)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	// Fetch the full item; the title listing omits fields.
	item, err := s.client.GetItem(items[0].ID, s.vaultID)
	if err != nil {
		return "", fmt.Errorf("getting item %q: %w", name, err)
	}

	for _, field := range item.Fields {
		label := strings.ToLower(field.Label)
		if label == "credential" || label == "password" {
			s.mu.Lock()
			s.cache[name] = field.Value
			s.mu.Unlock()
			return field.Value, nil
		}
	}

	return "", fmt.Errorf("item %q has no credential or password field: %w", name, ErrNotFound)
}

// Close drops the in-memory cache.
func (s *OnePasswordStore) Close() error {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
	return nil
}

// isNotFoundError checks whether the Connect API reported a missing item.
func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}
