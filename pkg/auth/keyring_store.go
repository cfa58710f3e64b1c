package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "postcrawler"
	keyringPrefix  = "session_"
	// keyringIndex holds the names of stored sessions, since go-keyring
	// cannot enumerate entries
	keyringIndex = "index"
)

// KeyringStore keeps sessions in the system keychain
type KeyringStore struct{}

// NewKeyringStore returns a keyring store if the keychain is usable
func NewKeyringStore() (*KeyringStore, error) {
	const probe = "probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, probe)
	return &KeyringStore{}, nil
}

// IsKeyringAvailable reports whether the system keychain can be used
func IsKeyringAvailable() bool {
	_, err := NewKeyringStore()
	return err == nil
}

// Store saves the account in the keychain
func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Name == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+account.Name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return k.updateIndex(account.Name, true)
}

// Retrieve gets the account from the keychain
func (k *KeyringStore) Retrieve(name string) (*Account, error) {
	if name == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

// List returns the accounts recorded in the index
func (k *KeyringStore) List() ([]*Account, error) {
	names, err := k.names()
	if err != nil {
		return nil, err
	}

	accounts := make([]*Account, 0, len(names))
	for _, name := range names {
		if account, err := k.Retrieve(name); err == nil {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// Delete removes the account from the keychain
func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return k.updateIndex(name, false)
}

// Exists checks if the account is in the keychain
func (k *KeyringStore) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+name)
	return err == nil
}

func (k *KeyringStore) names() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("failed to parse keyring index: %w", err)
	}
	return names, nil
}

func (k *KeyringStore) updateIndex(name string, present bool) error {
	names, err := k.names()
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(names)+1)
	for _, n := range names {
		if n != name {
			updated = append(updated, n)
		}
	}
	if present {
		updated = append(updated, name)
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	return keyring.Set(keyringService, keyringIndex, string(data))
}
