package secrets

import (
	"fmt"
	"log/slog"
	"os"
)

// Config holds configuration for the secrets backend.
type Config struct {
	// Backend specifies which backend to use: "1password", "local", "env",
	// or "auto". "auto" (default) uses 1Password if configured, otherwise
	// the local file if present, otherwise the environment.
	Backend string `yaml:"backend,omitempty"`

	// LocalPath is the credentials file for the local backend
	// (default: ~/.datto-check/credentials.yaml).
	LocalPath string `yaml:"local_path,omitempty"`

	// OnePassword Connect settings; usually supplied via OP_CONNECT_* env.
	OnePassword OnePasswordConfig `yaml:"-"`
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	return Config{
		Backend:   getEnv("DATTOCHECK_SECRETS_BACKEND", "auto"),
		LocalPath: os.Getenv("DATTOCHECK_CREDENTIALS_FILE"),
		OnePassword: OnePasswordConfig{
			Host:    os.Getenv("OP_CONNECT_HOST"),
			Token:   os.Getenv("OP_CONNECT_TOKEN"),
			VaultID: os.Getenv("OP_VAULT_ID"),
		},
	}
}

// NewStore creates a Store based on configuration.
func NewStore(cfg Config, logger *slog.Logger) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "auto"
	}

	switch backend {
	case "1password":
		return NewOnePasswordStore(cfg.OnePassword, logger)

	case "local":
		return NewLocalStore(cfg.LocalPath, logger)

	case "env":
		return NewEnvStore(), nil

	case "auto":
		if cfg.OnePassword.Host != "" && cfg.OnePassword.Token != "" {
			st, err := NewOnePasswordStore(cfg.OnePassword, logger)
			if err != nil {
				logger.Warn("failed to initialize 1Password, falling back to environment",
					"error", err)
				return NewEnvStore(), nil
			}
			return st, nil
		}
		if cfg.LocalPath != "" {
			return NewLocalStore(cfg.LocalPath, logger)
		}
		return NewEnvStore(), nil

	default:
		return nil, fmt.Errorf("unknown secrets backend: %s", backend)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
