package content

import (
	"context"
	"slices"
	"sort"
	"sync"

	"tenantportal/pkg/metadata"
)

type memRepo struct {
	mu    sync.RWMutex
	items map[ID]Item
	meta  metadata.Store
}

// NewMemory keeps items in process; post visibility is read from meta.
func NewMemory(meta metadata.Store) Repository {
	return &memRepo{items: map[ID]Item{}, meta: meta}
}

func (m *memRepo) Put(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.AllowedTenants = nil
	m.items[item.ID] = item
	return nil
}

func (m *memRepo) Item(ctx context.Context, id ID) (Item, error) {
	m.mu.RLock()
	it, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return Item{}, ErrNotFound
	}
	return m.withVisibility(ctx, it)
}

func (m *memRepo) Find(ctx context.Context, q *Query) ([]Item, error) {
	m.mu.RLock()
	candidates := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if q.Kind == "" || it.Kind == q.Kind {
			candidates = append(candidates, it)
		}
	}
	m.mu.RUnlock()

	out := make([]Item, 0, len(candidates))
	for _, it := range candidates {
		vis, err := m.withVisibility(ctx, it)
		if err != nil {
			return nil, err
		}
		if q.Matches(vis) {
			out = append(out, vis)
		}
	}
	if order := q.Ordering(); order != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return slices.Index(order, out[i].ID) < slices.Index(order, out[j].ID)
		})
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memRepo) withVisibility(ctx context.Context, it Item) (Item, error) {
	allowed, err := m.meta.Get(ctx, metadata.ItemOwner(it.ID), metadata.KeyAllowedTenants)
	if err != nil {
		return Item{}, err
	}
	it.AllowedTenants = allowed
	return it, nil
}
