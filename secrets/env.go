package secrets

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvPrefix is prepended to normalized secret names when reading
// from the environment.
const DefaultEnvPrefix = "MIMECAST_"

// EnvStore reads secrets from environment variables. A secret named
// "client-id" maps to MIMECAST_CLIENT_ID under the default prefix.
// SetSecret only affects the current process.
type EnvStore struct {
	prefix string
}

// NewEnvStore creates a store using DefaultEnvPrefix.
func NewEnvStore() *EnvStore {
	return &EnvStore{prefix: DefaultEnvPrefix}
}

// NewEnvStoreWithPrefix creates a store with a custom variable prefix.
func NewEnvStoreWithPrefix(prefix string) *EnvStore {
	return &EnvStore{prefix: prefix}
}

// NewEnvStoreFromFile loads a dotenv file into the process environment and
// returns a store reading from it. A missing file is not an error so the
// same code path works with and without a local .env.
func NewEnvStoreFromFile(path string) (*EnvStore, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("secrets: loading env file %s: %w", path, err)
	}
	return NewEnvStore(), nil
}

func (s *EnvStore) key(name string) string {
	return s.prefix + normalize(name)
}

// GetSecret implements Store.
func (s *EnvStore) GetSecret(name string) (string, error) {
	value, ok := os.LookupEnv(s.key(name))
	if !ok || value == "" {
		return "", &notFoundError{name: name, store: "environment"}
	}
	return value, nil
}

// SetSecret implements Store. The value is visible to this process only.
func (s *EnvStore) SetSecret(name, value string) error {
	return os.Setenv(s.key(name), value)
}
