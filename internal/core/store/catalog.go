// Package store holds the session's in-memory catalog and cart replicas.
// Each store guards itself with its own mutex; callers that need a check on
// one store and a mutation on another serialize at the service layer.
package store

import (
	"sort"
	"sync"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

// CatalogStore is the local replica of sellable items keyed by ID.
type CatalogStore struct {
	mu    sync.RWMutex
	items map[int64]domain.Item
}

func NewCatalogStore(items []domain.Item) *CatalogStore {
	s := &CatalogStore{items: make(map[int64]domain.Item, len(items))}
	s.Replace(items)
	return s
}

// Get returns a copy of the item with the given ID.
func (s *CatalogStore) Get(id int64) (domain.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// List returns all items ordered by ID.
func (s *CatalogStore) List() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Replace swaps the whole catalog. Items without an ID are assigned one and
// negative stock or price is clamped.
func (s *CatalogStore) Replace(items []domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]domain.Item, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			item.ID = s.nextIDLocked()
		}
		s.items[item.ID] = normalize(item)
	}
}

// Add inserts item, assigning max(ID)+1 when item.ID is unset, and returns
// the stored value.
func (s *CatalogStore) Add(item domain.Item) domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID <= 0 {
		item.ID = s.nextIDLocked()
	}
	item = normalize(item)
	s.items[item.ID] = item
	return item
}

// Update overwrites an existing item. It reports false if the ID is unknown.
func (s *CatalogStore) Update(item domain.Item) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return domain.Item{}, false
	}
	item = normalize(item)
	s.items[item.ID] = item
	return item, true
}

func (s *CatalogStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// SetStock assigns an absolute stock level, clamped at zero, and returns the
// stored value.
func (s *CatalogStore) SetStock(id int64, stock int) (int, bool) {
	applied := s.ApplyStock([]domain.StockChange{{ItemID: id, NewStock: stock}})
	if len(applied) == 0 {
		return 0, false
	}
	return applied[0].NewStock, true
}

// ApplyStock assigns every change under a single lock so readers observe
// either none or all of them. Unknown IDs are skipped and omitted from the
// returned slice.
func (s *CatalogStore) ApplyStock(changes []domain.StockChange) []domain.StockChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := make([]domain.StockChange, 0, len(changes))
	for _, c := range changes {
		item, ok := s.items[c.ItemID]
		if !ok {
			continue
		}
		item.Stock = domain.ClampStock(c.NewStock)
		s.items[c.ItemID] = item
		applied = append(applied, domain.StockChange{ItemID: c.ItemID, NewStock: item.Stock})
	}
	return applied
}

func (s *CatalogStore) nextIDLocked() int64 {
	var max int64
	for id := range s.items {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func normalize(item domain.Item) domain.Item {
	item.Stock = domain.ClampStock(item.Stock)
	if item.Price < 0 {
		item.Price = 0
	}
	return item
}
