package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000

	envPassphrase = "POSTCRAWLER_PASSPHRASE"
)

// EncryptedFileStore keeps sessions in an AES-GCM encrypted file. The key
// is derived with PBKDF2 from a passphrase taken from the environment or a
// generated passphrase file next to the store.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// sealedFile is the on-disk layout
type sealedFile struct {
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Version   int       `json:"version"`
	Modified  time.Time `json:"modified"`
}

// NewEncryptedFileStore creates a store backed by the file at path
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	passphrase, err := loadPassphrase(filepath.Join(dir, ".passphrase"))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

// Store saves the account
func (e *EncryptedFileStore) Store(account *Account) error {
	if account == nil || account.Name == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, salt, err := e.load()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing sessions: %w", err)
	}
	if accounts == nil {
		accounts = make(map[string]Account)
	}

	accounts[account.Name] = *account
	return e.save(accounts, salt)
}

// Retrieve returns the named account
func (e *EncryptedFileStore) Retrieve(name string) (*Account, error) {
	if name == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	accounts, _, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}

	account, ok := accounts[name]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

// List returns all stored accounts
func (e *EncryptedFileStore) List() ([]*Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	accounts, _, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return []*Account{}, nil
		}
		return nil, err
	}

	result := make([]*Account, 0, len(accounts))
	for _, account := range accounts {
		acc := account
		result = append(result, &acc)
	}
	return result, nil
}

// Delete removes the named account, and the file once it is empty
func (e *EncryptedFileStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, salt, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCredentialsNotFound
		}
		return err
	}
	if _, ok := accounts[name]; !ok {
		return ErrCredentialsNotFound
	}

	delete(accounts, name)
	if len(accounts) == 0 {
		return os.Remove(e.path)
	}
	return e.save(accounts, salt)
}

// Exists checks if the named account is stored
func (e *EncryptedFileStore) Exists(name string) bool {
	account, err := e.Retrieve(name)
	return err == nil && account != nil
}

func (e *EncryptedFileStore) load() (map[string]Account, []byte, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, nil, err
	}

	var file sealedFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(file.Encrypted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode session data: %w", err)
	}

	plain, err := decrypt(sealed, e.key(salt))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt session data: %w", err)
	}

	var accounts map[string]Account
	if err := json.Unmarshal(plain, &accounts); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sessions: %w", err)
	}
	return accounts, salt, nil
}

func (e *EncryptedFileStore) save(accounts map[string]Account, salt []byte) error {
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plain, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}
	sealed, err := encrypt(plain, e.key(salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt sessions: %w", err)
	}

	content, err := json.MarshalIndent(sealedFile{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(sealed),
		Version:   1,
		Modified:  time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}

	tempPath := e.path + ".tmp"
	if err := os.WriteFile(tempPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tempPath, e.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (e *EncryptedFileStore) key(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// loadPassphrase returns the environment passphrase, or the one stored at
// path, generating it on first use
func loadPassphrase(path string) (string, error) {
	if pass := os.Getenv(envPassphrase); pass != "" {
		return pass, nil
	}

	if content, err := os.ReadFile(path); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.URLEncoding.EncodeToString(b)

	if err := os.WriteFile(path, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

// encrypt seals plaintext with AES-GCM, prefixing the nonce
func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens a nonce-prefixed AES-GCM ciphertext
func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
