package persistence

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memoryStorageSize = 10000

// MemoryStorage is a bounded in-process fiber.Storage used when Redis is disabled.
// Entries expire after the configured window; older entries are evicted first when full.
type MemoryStorage struct {
	cache *expirable.LRU[string, []byte]
}

// NewMemoryStorage creates a store whose entries live for ttl.
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{cache: expirable.NewLRU[string, []byte](memoryStorageSize, nil, ttl)}
}

func (s *MemoryStorage) Get(key string) ([]byte, error) {
	val, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	return val, nil
}

// Set stores a copy of val. Per-key expiry is bounded by the store ttl.
func (s *MemoryStorage) Set(key string, val []byte, _ time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	s.cache.Add(key, cp)
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *MemoryStorage) Reset() error {
	s.cache.Purge()
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

// Len reports the number of live entries.
func (s *MemoryStorage) Len() int {
	return s.cache.Len()
}
