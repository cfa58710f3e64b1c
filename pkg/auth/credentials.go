package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Account is a stored forum session
type Account struct {
	Name string `json:"name"`
	// Cookies is the Cookie header value of a logged-in browser session
	Cookies      string    `json:"cookies"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Validate checks that the account carries a usable cookie header
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account name is required")
	}
	if strings.TrimSpace(a.Cookies) == "" {
		return errors.New("session cookies are required")
	}
	if _, err := http.ParseCookie(a.Cookies); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return nil
}

// CredentialStore is a place sessions can be kept
type CredentialStore interface {
	Store(account *Account) error
	Retrieve(name string) (*Account, error)
	List() ([]*Account, error)
	Delete(name string) error
	Exists(name string) bool
}

// Manager tries each store in order: system keyring, encrypted file,
// environment.
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager with every store available on this system
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "sessions.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over the given stores
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the account in the first store that accepts it
func (m *Manager) Store(account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store session: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve returns the named account from the first store that has it
func (m *Manager) Retrieve(name string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(name); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
}

// RetrieveDefault prefers the environment session, then the most recently
// stored one
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, store := range m.stores {
		if env, ok := store.(*EnvironmentStore); ok {
			if account, err := env.Retrieve(""); err == nil {
				return account, nil
			}
		}
	}

	accounts, err := m.List()
	if err == nil && len(accounts) > 0 {
		return accounts[0], nil
	}
	return nil, ErrCredentialsNotFound
}

// List returns every known account, newest first, one entry per name
func (m *Manager) List() ([]*Account, error) {
	byName := make(map[string]*Account)
	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := byName[account.Name]; !ok || account.LastModified.After(existing.LastModified) {
				byName[account.Name] = account
			}
		}
	}

	result := make([]*Account, 0, len(byName))
	for _, account := range byName {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastModified.After(result[j].LastModified)
	})
	return result, nil
}

// Delete removes the account from every store that has it
func (m *Manager) Delete(name string) error {
	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
	}
	return nil
}

func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "postcrawler")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "postcrawler")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "postcrawler")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "postcrawler")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// SanitizeAccount returns a copy safe to print: cookie values are masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	masked := account.Cookies
	if cookies, err := http.ParseCookie(account.Cookies); err == nil {
		parts := make([]string, 0, len(cookies))
		for _, c := range cookies {
			parts = append(parts, c.Name+"="+maskString(c.Value))
		}
		masked = strings.Join(parts, "; ")
	} else {
		masked = maskString(masked)
	}

	return &Account{
		Name:         account.Name,
		Cookies:      masked,
		UserAgent:    account.UserAgent,
		LastModified: account.LastModified,
	}
}

func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("session not found")
	ErrInvalidCredentials  = errors.New("invalid session")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
