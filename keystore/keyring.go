package keystore

import (
	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

// KeyringVault stores secrets in the operating system's keyring (macOS
// Keychain, the freedesktop Secret Service, or the Windows Credential
// Manager). Entries are scoped under a service name so multiple
// applications sharing the keyring do not collide; the derived key
// (<identity>.<kind>) becomes the keyring account.
type KeyringVault struct {
	service string
}

var _ Vault = (*KeyringVault)(nil)

// NewKeyringVault creates a vault scoped to the given keyring service
// name, e.g. "com.example.app".
func NewKeyringVault(service string) (*KeyringVault, error) {
	if service == "" {
		return nil, errors.New("[NewKeyringVault] service name is required")
	}
	return &KeyringVault{service: service}, nil
}

func (v *KeyringVault) Get(key string) ([]byte, error) {
	value, err := keyring.Get(v.service, key)
	if err != nil {
		return nil, v.mapErr(err)
	}
	return []byte(value), nil
}

// Insert relies on the keyring's own set semantics, which replace any
// existing entry: the at-most-one-entry-per-key invariant is the
// platform's, not ours.
func (v *KeyringVault) Insert(key string, value []byte) error {
	if err := keyring.Set(v.service, key, string(value)); err != nil {
		return v.mapErr(err)
	}
	return nil
}

// Update fails with ErrItemNotFound when no entry exists, so the Store's
// upsert can distinguish the insert fallback from a real failure.
func (v *KeyringVault) Update(key string, value []byte) error {
	if _, err := keyring.Get(v.service, key); err != nil {
		return v.mapErr(err)
	}
	if err := keyring.Set(v.service, key, string(value)); err != nil {
		return v.mapErr(err)
	}
	return nil
}

func (v *KeyringVault) Delete(key string) error {
	if err := keyring.Delete(v.service, key); err != nil {
		return v.mapErr(err)
	}
	return nil
}

func (v *KeyringVault) mapErr(err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}
