package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// memoryStore is an in-memory CredentialStore with error injection
type memoryStore struct {
	mu         sync.Mutex
	accounts   map[string]Account
	storeError error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: make(map[string]Account)}
}

func (m *memoryStore) Store(account *Account) error {
	if m.storeError != nil {
		return m.storeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.Name] = *account
	return nil
}

func (m *memoryStore) Retrieve(name string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[name]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

func (m *memoryStore) List() ([]*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Account
	for _, a := range m.accounts {
		acc := a
		out = append(out, &acc)
	}
	return out, nil
}

func (m *memoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[name]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.accounts, name)
	return nil
}

func (m *memoryStore) Exists(name string) bool {
	_, err := m.Retrieve(name)
	return err == nil
}

func testAccount(name string) *Account {
	return &Account{
		Name:      name,
		Cookies:   "xf_user=12345%2Cabcdefghijkl; xf_session=0123456789abcdef",
		UserAgent: "TestAgent/1.0",
	}
}

func TestManagerLifecycle(t *testing.T) {
	store := newMemoryStore()
	manager := NewManagerWithStores(store)

	require.NoError(t, manager.Store(testAccount("reefer")))

	retrieved, err := manager.Retrieve("reefer")
	require.NoError(t, err)
	assert.Equal(t, "reefer", retrieved.Name)
	assert.Contains(t, retrieved.Cookies, "xf_session=")
	assert.False(t, retrieved.LastModified.IsZero())

	accounts, err := manager.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, manager.Delete("reefer"))
	_, err = manager.Retrieve("reefer")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.ErrorIs(t, manager.Delete("reefer"), ErrCredentialsNotFound)
}

func TestManagerStoreValidation(t *testing.T) {
	manager := NewManagerWithStores(newMemoryStore())

	tests := []struct {
		name    string
		account *Account
	}{
		{"missing name", &Account{Cookies: "a=b"}},
		{"missing cookies", &Account{Name: "x"}},
		{"malformed cookies", &Account{Name: "x", Cookies: "no-equals-sign"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, manager.Store(tt.account))
		})
	}
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := newMemoryStore()
	broken.storeError = errors.New("keychain locked")
	fallback := newMemoryStore()

	manager := NewManagerWithStores(broken, fallback)
	require.NoError(t, manager.Store(testAccount("reefer")))
	assert.True(t, fallback.Exists("reefer"))
	assert.False(t, broken.Exists("reefer"))
}

func TestManagerListNewestFirst(t *testing.T) {
	store := newMemoryStore()
	manager := NewManagerWithStores(store)

	older := testAccount("older")
	older.LastModified = time.Now().Add(-time.Hour)
	require.NoError(t, store.Store(older))
	newer := testAccount("newer")
	newer.LastModified = time.Now()
	require.NoError(t, store.Store(newer))

	accounts, err := manager.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "newer", accounts[0].Name)

	def, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "newer", def.Name)
}

func TestRetrieveDefaultPrefersEnvironment(t *testing.T) {
	t.Setenv(envCookies, "xf_session=fromenv")
	store := newMemoryStore()
	require.NoError(t, store.Store(testAccount("stored")))

	manager := NewManagerWithStores(store, NewEnvironmentStore())
	account, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "env", account.Name)
	assert.Equal(t, "xf_session=fromenv", account.Cookies)
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("reefer")
	sanitized := SanitizeAccount(account)

	assert.Equal(t, "reefer", sanitized.Name)
	assert.Equal(t, "xf_user=1234...ijkl; xf_session=0123...cdef", sanitized.Cookies)
	assert.NotContains(t, sanitized.Cookies, "0123456789abcdef")
	assert.Nil(t, SanitizeAccount(nil))
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(envPassphrase, "test_passphrase_123")
	path := filepath.Join(t.TempDir(), "sessions.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	account := testAccount("encrypted_user")
	require.NoError(t, store.Store(account))

	retrieved, err := store.Retrieve("encrypted_user")
	require.NoError(t, err)
	assert.Equal(t, account.Cookies, retrieved.Cookies)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(content, []byte("0123456789abcdef")), "file contains plaintext cookies")

	// A second store with the same passphrase reads the same file.
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	assert.True(t, reopened.Exists("encrypted_user"))

	accounts, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, reopened.Delete("encrypted_user"))
	assert.NoFileExists(t, path)
	assert.ErrorIs(t, reopened.Delete("encrypted_user"), ErrCredentialsNotFound)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.enc")

	t.Setenv(envPassphrase, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("reefer")))

	t.Setenv(envPassphrase, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve("reefer")
	assert.Error(t, err)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(envPassphrase, "")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(filepath.Join(dir, "sessions.enc"))
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("reefer")))

	info, err := os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv(envCookies, "")
	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.False(t, store.Exists(""))

	t.Setenv(envCookies, "xf_session=abc")
	t.Setenv(envUserAgent, "EnvAgent/1.0")
	account, err := store.Retrieve("named")
	require.NoError(t, err)
	assert.Equal(t, "named", account.Name)
	assert.Equal(t, "EnvAgent/1.0", account.UserAgent)

	assert.ErrorIs(t, store.Store(account), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("named"), ErrStoreUnavailable)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	assert.True(t, IsKeyringAvailable())

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("first")))
	require.NoError(t, store.Store(testAccount("second")))
	assert.True(t, store.Exists("first"))

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, store.Delete("first"))
	assert.False(t, store.Exists("first"))
	assert.ErrorIs(t, store.Delete("first"), ErrCredentialsNotFound)

	accounts, err = store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "second", accounts[0].Name)
}

func TestWriteCookieGuide(t *testing.T) {
	var buf bytes.Buffer
	WriteCookieGuide(&buf, "https://www.reef2reef.com")
	assert.Contains(t, buf.String(), "https://www.reef2reef.com")
	assert.Contains(t, buf.String(), "Cookie header")
}
