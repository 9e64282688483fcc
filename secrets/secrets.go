// Package secrets provides credential storage backends for the SDK. The
// environment store covers twelve-factor deployments, optionally loading a
// dotenv file first; the file store keeps secrets in a JSON file with
// restrictive permissions for workstation use.
package secrets

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested secret does not exist in the
// store.
var ErrNotFound = errors.New("secret not found")

// Well-known secret names used by the SDK.
const (
	KeyClientID     = "client-id"
	KeyClientSecret = "client-secret"
)

// Store reads and writes named secrets.
type Store interface {
	GetSecret(name string) (string, error)
	SetSecret(name, value string) error
}

// normalize maps a secret name to its canonical environment variable form:
// upper-cased with separators folded to underscores, e.g. "client-id"
// becomes "CLIENT_ID".
func normalize(name string) string {
	r := strings.NewReplacer("-", "_", "/", "_", ".", "_", " ", "_")
	return strings.ToUpper(r.Replace(name))
}

type notFoundError struct {
	name  string
	store string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("secret %q not found in %s", e.name, e.store)
}

func (e *notFoundError) Is(target error) bool {
	return target == ErrNotFound
}
