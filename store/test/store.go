// Package test provides an in-memory store for tests.
package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/hrygo/studysense/internal/profile"
	"github.com/hrygo/studysense/store"
)

// memDriver is a map-backed store.Driver for tests.
type memDriver struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDriver() store.Driver {
	return &memDriver{data: make(map[string][]byte)}
}

func (d *memDriver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	value, ok := d.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (d *memDriver) Set(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	d.data[key] = stored
	return nil
}

func (d *memDriver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.data, key)
	return nil
}

func (d *memDriver) List(_ context.Context, prefix string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var keys []string
	for key := range d.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (d *memDriver) Close() error {
	return nil
}

// NewTestingStore creates a Store backed by the in-memory driver.
func NewTestingStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(NewMemDriver(), &profile.Profile{Mode: "dev"})
}
