package store

import (
	"sync"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

// CartStore holds the session's cart lines in insertion order.
type CartStore struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

// NewCartStore restores a cart from lines, merging duplicate item IDs and
// dropping non-positive quantities.
func NewCartStore(lines []domain.CartLine) *CartStore {
	s := &CartStore{}
	s.Replace(lines)
	return s
}

func (s *CartStore) Replace(lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]domain.CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if i, ok := index[line.ItemID]; ok {
			s.lines[i].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(s.lines)
		s.lines = append(s.lines, line)
	}
}

// Quantity returns the units of itemID in the cart, or 0.
func (s *CartStore) Quantity(itemID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(itemID); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// Set stores quantity for itemID. A quantity of zero or less removes the line.
func (s *CartStore) Set(itemID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(itemID)
	switch {
	case quantity <= 0 && i >= 0:
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	case quantity <= 0:
	case i >= 0:
		s.lines[i].Quantity = quantity
	default:
		s.lines = append(s.lines, domain.CartLine{ItemID: itemID, Quantity: quantity})
	}
}

func (s *CartStore) Remove(itemID int64) {
	s.Set(itemID, 0)
}

func (s *CartStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Lines returns a copy of the cart lines.
func (s *CartStore) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *CartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *CartStore) indexLocked(itemID int64) int {
	for i, line := range s.lines {
		if line.ItemID == itemID {
			return i
		}
	}
	return -1
}
