package keystore

import (
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Derived key suffixes. One vault entry per (identity, suffix) pair.
const (
	keySuffixPassword     = "password"
	keySuffixRefreshToken = "refreshToken"
)

// Store keeps one identity's credentials. The password and refresh token
// live in the vault with a read-through in-memory cache; the access token
// is short-lived and lives in memory only. The cache is updated only after
// the corresponding vault operation has succeeded, so a failed write never
// leaves the cache claiming a value that was not durably stored.
//
// Stores for different identities are independent and may be used
// concurrently.
type Store struct {
	identity string
	vault    Vault
	logger   zerolog.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	password     string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger. Secret values are never logged; only
// identities, derived keys, and outcomes are.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a credential store for one identity, typically the account
// DID, backed by the given vault.
func New(identity string, vault Vault, options ...Option) (*Store, error) {
	if identity == "" {
		return nil, errors.New("[keystore.New] identity is required")
	}
	if vault == nil {
		return nil, errors.New("[keystore.New] vault is required")
	}

	store := &Store{
		identity: identity,
		vault:    vault,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

// Identity returns the identity this store was created for.
func (s *Store) Identity() string {
	return s.identity
}

func (s *Store) derivedKey(suffix string) string {
	return s.identity + "." + suffix
}

// AccessToken returns the cached access token. It fails with
// ErrAccessTokenNotFound when none has been saved; the vault is never
// consulted.
func (s *Store) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken == "" {
		return "", ErrAccessTokenNotFound
	}
	return s.accessToken, nil
}

// SaveAccessToken replaces the cached access token unconditionally.
func (s *Store) SaveAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

// DeleteAccessToken clears the cached access token. Idempotent.
func (s *Store) DeleteAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
}

// RefreshToken returns the refresh token, reading through to the vault when
// the cache is cold.
func (s *Store) RefreshToken() (string, error) {
	return s.secret("RefreshToken", keySuffixRefreshToken, &s.refreshToken)
}

// SaveRefreshToken upserts the refresh token into the vault and, on
// success, the cache.
func (s *Store) SaveRefreshToken(token string) error {
	return s.save("SaveRefreshToken", keySuffixRefreshToken, &s.refreshToken, token)
}

// UpdateRefreshToken is SaveRefreshToken under the name callers reach for
// during a rotation; the contract is identical (upsert).
func (s *Store) UpdateRefreshToken(token string) error {
	return s.save("UpdateRefreshToken", keySuffixRefreshToken, &s.refreshToken, token)
}

// DeleteRefreshToken removes the refresh token from the vault and the
// cache. Deleting an absent token is a success.
func (s *Store) DeleteRefreshToken() error {
	return s.delete("DeleteRefreshToken", keySuffixRefreshToken, &s.refreshToken)
}

// Password returns the account password, reading through to the vault when
// the cache is cold.
func (s *Store) Password() (string, error) {
	return s.secret("Password", keySuffixPassword, &s.password)
}

// SavePassword upserts the password into the vault and, on success, the
// cache.
func (s *Store) SavePassword(password string) error {
	return s.save("SavePassword", keySuffixPassword, &s.password, password)
}

// UpdatePassword is SavePassword; the contract is identical (upsert).
func (s *Store) UpdatePassword(password string) error {
	return s.save("UpdatePassword", keySuffixPassword, &s.password, password)
}

// DeletePassword removes the password from the vault and the cache.
// Deleting an absent password is a success.
func (s *Store) DeletePassword() error {
	return s.delete("DeletePassword", keySuffixPassword, &s.password)
}

// DeleteAll removes every credential this store holds: the cached access
// token, the refresh token, and the password. Idempotent.
func (s *Store) DeleteAll() error {
	s.DeleteAccessToken()
	if err := s.DeleteRefreshToken(); err != nil {
		return err
	}
	return s.DeletePassword()
}

func (s *Store) secret(op, suffix string, cache *string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *cache != "" {
		return *cache, nil
	}

	key := s.derivedKey(suffix)
	raw, err := s.vault.Get(key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return "", errors.Wrapf(ErrItemNotFound, "[Store.%s] %q", op, key)
		}
		return "", &UnhandledVaultError{Op: op, Key: key, Err: err}
	}
	if !utf8.Valid(raw) {
		return "", errors.Wrapf(ErrInvalidData, "[Store.%s] %q", op, key)
	}

	*cache = string(raw)
	return *cache, nil
}

func (s *Store) save(op, suffix string, cache *string, value string) error {
	// An empty string marks a cold cache, so an empty secret could never
	// be cached and would re-read the vault on every retrieve. There is
	// no legitimate empty password or refresh token; reject it.
	if value == "" {
		return errors.Errorf("[Store.%s] secret must not be empty", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.derivedKey(suffix)
	err := s.vault.Update(key, []byte(value))
	if errors.Is(err, ErrItemNotFound) {
		err = s.vault.Insert(key, []byte(value))
	}
	if err != nil {
		return &UnhandledVaultError{Op: op, Key: key, Err: err}
	}

	*cache = value
	s.logger.Debug().Str("identity", s.identity).Str("key", key).Msg("secret saved")
	return nil
}

func (s *Store) delete(op, suffix string, cache *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.derivedKey(suffix)
	if err := s.vault.Delete(key); err != nil && !errors.Is(err, ErrItemNotFound) {
		return &UnhandledVaultError{Op: op, Key: key, Err: err}
	}

	*cache = ""
	s.logger.Debug().Str("identity", s.identity).Str("key", key).Msg("secret deleted")
	return nil
}
