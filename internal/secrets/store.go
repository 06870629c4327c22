// Package secrets resolves API and SMTP credentials from a configurable
// backend: process environment, a local credentials file, or 1Password
// Connect. Explicit CLI arguments always bypass this package.
package secrets

import (
	"context"
	"errors"
)

// Well-known credential names.
const (
	CredAPIUsername  = "api-username"
	CredAPIPassword  = "api-password"
	CredSMTPPassword = "smtp-password"
)

// ErrNotFound is returned when a backend has no value for a credential.
var ErrNotFound = errors.New("credential not found")

// Store resolves named credentials.
type Store interface {
	// Get returns the credential value, or ErrNotFound.
	Get(ctx context.Context, name string) (string, error)

	// Close releases any backend resources.
	Close() error
}
