// Package keystore manages an account's long-lived secrets (password and
// refresh token) in a platform secret vault, and its short-lived access
// token in memory. One Store serves one identity; all of its operations are
// serialized, so a read-modify-write against the vault can never race a
// concurrent update for the same identity.
package keystore

import (
	"fmt"

	"github.com/pkg/errors"
)

// Vault is the pluggable secret-storage backend. Implementations must
// guarantee at most one entry per key and normalize their "no such item"
// condition to ErrItemNotFound; any other failure may be returned as-is and
// is wrapped by the Store as an UnhandledVaultError.
//
// KeyringVault backs this with the OS keyring. AgeFileVault is the adapter
// for hosts without one. vaultfakes.FakeVault serves tests.
type Vault interface {
	// Get returns the stored value for key, or ErrItemNotFound.
	Get(key string) ([]byte, error)

	// Insert stores a new value under key.
	Insert(key string, value []byte) error

	// Update replaces the value under an existing key, failing with
	// ErrItemNotFound when the key is absent.
	Update(key string, value []byte) error

	// Delete removes the entry under key, failing with ErrItemNotFound
	// when the key is absent.
	Delete(key string) error
}

var (
	// ErrAccessTokenNotFound is returned when no access token has been
	// saved since the process started. Access tokens are never persisted,
	// so there is no vault to fall back to.
	ErrAccessTokenNotFound = errors.New("access token not found")

	// ErrItemNotFound is returned when the vault has no entry for the
	// derived key, letting callers distinguish "never set" from "failed
	// to read".
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidData is returned when a stored secret cannot be decoded
	// as text.
	ErrInvalidData = errors.New("stored data is not valid text")
)

// UnhandledVaultError wraps a vault failure that is not plain absence,
// preserving the backend's raw error for diagnostics.
type UnhandledVaultError struct {
	Op  string
	Key string
	Err error
}

func (e *UnhandledVaultError) Error() string {
	return fmt.Sprintf("unhandled vault error in %s for %q: %v", e.Op, e.Key, e.Err)
}

func (e *UnhandledVaultError) Unwrap() error {
	return e.Err
}
