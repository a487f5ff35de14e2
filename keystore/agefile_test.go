package keystore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atkit/atkit/keystore"
)

func setupAgeVault(t *testing.T) (*keystore.AgeFileVault, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "secrets.age")
	vault, err := keystore.NewAgeFileVault(path, "correct horse battery staple")
	require.NoError(t, err)
	return vault, path
}

func TestAgeFileVaultRoundTrip(t *testing.T) {
	vault, path := setupAgeVault(t)

	require.NoError(t, vault.Insert("alice.refreshToken", []byte("r1")))
	value, err := vault.Get("alice.refreshToken")
	require.NoError(t, err)
	require.Equal(t, []byte("r1"), value)

	// Re-open the file with a fresh vault instance.
	reopened, err := keystore.NewAgeFileVault(path, "correct horse battery staple")
	require.NoError(t, err)
	value, err = reopened.Get("alice.refreshToken")
	require.NoError(t, err)
	require.Equal(t, []byte("r1"), value)
}

func TestAgeFileVaultMissingItems(t *testing.T) {
	vault, _ := setupAgeVault(t)

	_, err := vault.Get("nope")
	require.ErrorIs(t, err, keystore.ErrItemNotFound)

	err = vault.Update("nope", []byte("v"))
	require.ErrorIs(t, err, keystore.ErrItemNotFound)

	err = vault.Delete("nope")
	require.ErrorIs(t, err, keystore.ErrItemNotFound)
}

func TestAgeFileVaultUpdateAndDelete(t *testing.T) {
	vault, _ := setupAgeVault(t)

	require.NoError(t, vault.Insert("k", []byte("v1")))
	require.NoError(t, vault.Update("k", []byte("v2")))

	value, err := vault.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), value)

	require.NoError(t, vault.Delete("k"))
	_, err = vault.Get("k")
	require.ErrorIs(t, err, keystore.ErrItemNotFound)
}

func TestAgeFileVaultWrongPassphrase(t *testing.T) {
	vault, path := setupAgeVault(t)
	require.NoError(t, vault.Insert("k", []byte("v")))

	wrong, err := keystore.NewAgeFileVault(path, "incorrect")
	require.NoError(t, err)
	_, err = wrong.Get("k")
	require.Error(t, err)
	require.NotErrorIs(t, err, keystore.ErrItemNotFound)
}

func TestStoreOverAgeFileVault(t *testing.T) {
	vault, _ := setupAgeVault(t)

	store, err := keystore.New("did:plc:agetest", vault)
	require.NoError(t, err)

	require.NoError(t, store.SaveRefreshToken("r1"))
	require.NoError(t, store.SaveRefreshToken("r2"))

	token, err := store.RefreshToken()
	require.NoError(t, err)
	require.Equal(t, "r2", token)
}
