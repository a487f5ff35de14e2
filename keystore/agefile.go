package keystore

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"
	"github.com/pkg/errors"
)

// AgeFileVault is the Vault adapter for hosts without an OS keyring. All
// entries live in a single age-encrypted JSON file, encrypted with a
// passphrase-derived (scrypt) key. The file is written with 0600
// permissions via a temp-file-and-rename so a crash mid-write cannot leave
// a truncated vault behind.
type AgeFileVault struct {
	path       string
	passphrase string

	mu sync.Mutex
}

var _ Vault = (*AgeFileVault)(nil)

// NewAgeFileVault creates a file-backed vault at path. The file is created
// lazily on the first write; a missing file reads as an empty vault.
func NewAgeFileVault(path, passphrase string) (*AgeFileVault, error) {
	if path == "" {
		return nil, errors.New("[NewAgeFileVault] path is required")
	}
	if passphrase == "" {
		return nil, errors.New("[NewAgeFileVault] passphrase is required")
	}
	return &AgeFileVault{path: path, passphrase: passphrase}, nil
}

func (v *AgeFileVault) Get(key string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.load()
	if err != nil {
		return nil, err
	}
	value, ok := entries[key]
	if !ok {
		return nil, ErrItemNotFound
	}
	return []byte(value), nil
}

func (v *AgeFileVault) Insert(key string, value []byte) error {
	return v.set(key, value, false)
}

func (v *AgeFileVault) Update(key string, value []byte) error {
	return v.set(key, value, true)
}

func (v *AgeFileVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return ErrItemNotFound
	}
	delete(entries, key)
	return v.store(entries)
}

func (v *AgeFileVault) set(key string, value []byte, mustExist bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; mustExist && !ok {
		return ErrItemNotFound
	}
	entries[key] = string(value)
	return v.store(entries)
}

func (v *AgeFileVault) load() (map[string]string, error) {
	ciphertext, err := os.ReadFile(v.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[AgeFileVault.load] read")
	}

	identity, err := age.NewScryptIdentity(v.passphrase)
	if err != nil {
		return nil, errors.Wrap(err, "[AgeFileVault.load] scrypt identity")
	}
	plaintext, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, errors.Wrap(err, "[AgeFileVault.load] decrypt")
	}
	raw, err := io.ReadAll(plaintext)
	if err != nil {
		return nil, errors.Wrap(err, "[AgeFileVault.load] read plaintext")
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(err, "[AgeFileVault.load] unmarshal")
	}
	return entries, nil
}

func (v *AgeFileVault) store(entries map[string]string) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] marshal")
	}

	recipient, err := age.NewScryptRecipient(v.passphrase)
	if err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] scrypt recipient")
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] encrypt")
	}
	if _, err := w.Write(raw); err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] write")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] close")
	}

	tmp := v.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] mkdir")
	}
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] write file")
	}
	if err := os.Rename(tmp, v.path); err != nil {
		return errors.Wrap(err, "[AgeFileVault.store] rename")
	}
	return nil
}
