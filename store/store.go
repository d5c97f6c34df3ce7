package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/studysense/internal/profile"
	"github.com/hrygo/studysense/store/cache"
)

// Store provides access to all persisted collections. Each collection
// round-trips through the key-value driver independently.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// cache for hot read paths (document chunk pools, topic lists)
	cache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		cache:   cache.New(256, 10*time.Minute),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// getJSON loads and unmarshals the value at key into out. Returns false when
// the key does not exist.
func (s *Store) getJSON(ctx context.Context, key string, out any) (bool, error) {
	value, err := s.driver.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if value == nil {
		return false, nil
	}
	if err := json.Unmarshal(value, out); err != nil {
		return false, errors.Wrapf(err, "failed to decode value at %s", key)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, in any) error {
	value, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(err, "failed to encode value for %s", key)
	}
	return s.driver.Set(ctx, key, value)
}
