package vaultfakes

import (
	"sync"

	"github.com/atkit/atkit/keystore"
)

var _ keystore.Vault = (*FakeVault)(nil)

// FakeVault is an in-memory Vault for tests. It counts calls per operation
// and can be primed to fail, so tests can assert both what reached the
// vault and how the store behaves when the platform misbehaves.
type FakeVault struct {
	mu    sync.Mutex
	items map[string][]byte

	ops      map[string]int
	failures map[string]error
}

func NewFakeVault() *FakeVault {
	return &FakeVault{
		items:    make(map[string][]byte),
		ops:      make(map[string]int),
		failures: make(map[string]error),
	}
}

// FailWith makes every subsequent call to op ("Get", "Insert", "Update",
// "Delete") return err. Pass nil to clear.
func (v *FakeVault) FailWith(op string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		delete(v.failures, op)
		return
	}
	v.failures[op] = err
}

// Calls returns how many times op has been invoked.
func (v *FakeVault) Calls(op string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ops[op]
}

// TotalCalls returns how many vault operations have been invoked in total.
func (v *FakeVault) TotalCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	total := 0
	for _, n := range v.ops {
		total += n
	}
	return total
}

// Seed places a value directly into the fake, bypassing counters.
func (v *FakeVault) Seed(key string, value []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items[key] = value
}

func (v *FakeVault) Get(key string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ops["Get"]++
	if err := v.failures["Get"]; err != nil {
		return nil, err
	}
	value, ok := v.items[key]
	if !ok {
		return nil, keystore.ErrItemNotFound
	}
	return value, nil
}

func (v *FakeVault) Insert(key string, value []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ops["Insert"]++
	if err := v.failures["Insert"]; err != nil {
		return err
	}
	v.items[key] = value
	return nil
}

func (v *FakeVault) Update(key string, value []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ops["Update"]++
	if err := v.failures["Update"]; err != nil {
		return err
	}
	if _, ok := v.items[key]; !ok {
		return keystore.ErrItemNotFound
	}
	v.items[key] = value
	return nil
}

func (v *FakeVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ops["Delete"]++
	if err := v.failures["Delete"]; err != nil {
		return err
	}
	if _, ok := v.items[key]; !ok {
		return keystore.ErrItemNotFound
	}
	delete(v.items, key)
	return nil
}
