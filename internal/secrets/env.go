package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvStore reads credentials from DATTOCHECK_* environment variables.
type EnvStore struct{}

// NewEnvStore creates an environment-backed store.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// envVarNames maps well-known credential names to their variables.
var envVarNames = map[string]string{
	CredAPIUsername:  "DATTOCHECK_API_USER",
	CredAPIPassword:  "DATTOCHECK_API_PASSWORD",
	CredSMTPPassword: "DATTOCHECK_SMTP_PASSWORD",
}

// Get returns the credential from its environment variable. Names without
// a dedicated variable fall back to DATTOCHECK_<NAME> with dashes as
// underscores.
func (s *EnvStore) Get(_ context.Context, name string) (string, error) {
	envVar, ok := envVarNames[name]
	if !ok {
		envVar = "DATTOCHECK_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	}
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s (env %s): %w", name, envVar, ErrNotFound)
}

// Close is a no-op for the environment backend.
func (s *EnvStore) Close() error { return nil }
