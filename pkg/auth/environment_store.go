package auth

import (
	"os"
	"time"
)

const (
	envCookies   = "POSTCRAWLER_COOKIES"
	envUserAgent = "POSTCRAWLER_COOKIES_USER_AGENT"
)

// EnvironmentStore reads a single read-only session from the environment
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment session under the requested name, or
// "env" when name is empty
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	cookies := os.Getenv(envCookies)
	if cookies == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = "env"
	}

	return &Account{
		Name:         name,
		Cookies:      cookies,
		UserAgent:    os.Getenv(envUserAgent),
		LastModified: time.Now(),
	}, nil
}

// List returns the environment session if one is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists reports whether an environment session is set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(envCookies) != ""
}
