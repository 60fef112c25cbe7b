package metadata

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]string
}

func NewMemory() Store {
	return &memStore{data: map[string]map[string][]string{}}
}

func (m *memStore) Get(_ context.Context, owner, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.data[owner][key]...), nil
}

func (m *memStore) GetAll(_ context.Context, owner string) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]string, len(m.data[owner]))
	for k, v := range m.data[owner] {
		out[k] = append([]string(nil), v...)
	}
	return out, nil
}

func (m *memStore) Put(ctx context.Context, owner, key string, values []string) error {
	return m.PutMany(ctx, owner, map[string][]string{key: values})
}

func (m *memStore) PutMany(_ context.Context, owner string, writes map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, values := range writes {
		if len(values) == 0 {
			delete(m.data[owner], key)
			continue
		}
		if m.data[owner] == nil {
			m.data[owner] = map[string][]string{}
		}
		m.data[owner][key] = append([]string(nil), values...)
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, owner, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[owner], key)
	return nil
}

func (m *memStore) Owners(_ context.Context, prefix, key, value string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for owner, kv := range m.data {
		if !strings.HasPrefix(owner, prefix) {
			continue
		}
		for _, v := range kv[key] {
			if v == value {
				out = append(out, owner)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) OwnersWithPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for owner, kv := range m.data {
		if strings.HasPrefix(owner, prefix) && len(kv) > 0 {
			out = append(out, owner)
		}
	}
	sort.Strings(out)
	return out, nil
}
