package transient

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memStore struct {
	mu sync.Mutex // serializes Take against other writers
	c  *gocache.Cache
}

// NewMemory returns a process-local store; defaultTTL applies when Put gets ttl <= 0.
func NewMemory(defaultTTL time.Duration) Store {
	return &memStore{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.mu.Lock()
	m.c.Set(key, append([]byte(nil), value...), ttl)
	m.mu.Unlock()
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	return b, true, nil
}

func (m *memStore) Take(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	m.c.Delete(key)
	b, _ := v.([]byte)
	return b, true, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	m.c.Delete(key)
	m.mu.Unlock()
	return nil
}
