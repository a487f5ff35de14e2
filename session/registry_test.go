package session_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/atkit/atkit/session"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := session.NewRegistry()
	key := uuid.New()

	_, ok := registry.Session(key)
	require.False(t, ok)
	require.False(t, registry.Contains(key))

	first := &session.UserSession{DID: "did:plc:one", AccessToken: "a1"}
	registry.Register(key, first)
	require.True(t, registry.Contains(key))

	got, ok := registry.Session(key)
	require.True(t, ok)
	require.Same(t, first, got)

	// Register overwrites unconditionally.
	second := &session.UserSession{DID: "did:plc:one", AccessToken: "a2"}
	registry.Register(key, second)
	got, _ = registry.Session(key)
	require.Same(t, second, got)
}

func TestRegistryUpdateRequiresExistingEntry(t *testing.T) {
	registry := session.NewRegistry()
	key := uuid.New()
	sess := &session.UserSession{DID: "did:plc:one", AccessToken: "a1"}

	require.False(t, registry.Update(key, sess))
	require.False(t, registry.Contains(key))
	require.Equal(t, 0, registry.Count())

	registry.Register(key, sess)
	replacement := &session.UserSession{DID: "did:plc:one", AccessToken: "a2"}
	require.True(t, registry.Update(key, replacement))

	got, _ := registry.Session(key)
	require.Same(t, replacement, got)
}

func TestRegistryRemove(t *testing.T) {
	registry := session.NewRegistry()
	key := uuid.New()

	registry.Register(key, &session.UserSession{DID: "did:plc:one", AccessToken: "a1"})
	registry.Remove(key)
	require.False(t, registry.Contains(key))

	// Removing an absent key is a no-op.
	registry.Remove(key)
}

func TestRegistryRemoveAll(t *testing.T) {
	registry := session.NewRegistry()
	keys := make([]uuid.UUID, 5)
	for i := range keys {
		keys[i] = uuid.New()
		registry.Register(keys[i], &session.UserSession{DID: "did:plc:one", AccessToken: "a1"})
	}

	registry.RemoveAll()
	require.Equal(t, 0, registry.Count())
	for _, key := range keys {
		_, ok := registry.Session(key)
		require.False(t, ok)
	}
}

func TestRegistryConcurrentRegisters(t *testing.T) {
	registry := session.NewRegistry()

	const n = 64
	keys := make([]uuid.UUID, n)
	for i := range keys {
		keys[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			registry.Register(keys[i], &session.UserSession{
				DID:         "did:plc:concurrent",
				AccessToken: keys[i].String(),
			})
		}(i)
	}
	wg.Wait()

	require.Equal(t, n, registry.Count())
	for _, key := range keys {
		got, ok := registry.Session(key)
		require.True(t, ok)
		require.Equal(t, key.String(), got.AccessToken)
	}
}

func TestDefaultRegistryIsShared(t *testing.T) {
	require.Same(t, session.DefaultRegistry(), session.DefaultRegistry())
}
