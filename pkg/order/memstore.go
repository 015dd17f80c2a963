package order

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dawoncafe/orderintent/internal/menu"
)

// MemStore is an in-memory Store. Safe for concurrent use.
type MemStore struct {
	mu    sync.Mutex
	lines []Line
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory order.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Add(item *menu.Item, t menu.Temperature, qty int) Line {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].MenuID == item.ID && s.lines[i].Temperature == t {
			s.lines[i].Quantity += qty
			s.lines[i].TotalPrice = s.lines[i].Quantity * s.lines[i].UnitPrice
			return s.lines[i]
		}
	}

	line := Line{
		ID:          uuid.NewString(),
		MenuID:      item.ID,
		Name:        item.Name,
		Temperature: t,
		Quantity:    qty,
		UnitPrice:   item.Price,
		TotalPrice:  qty * item.Price,
	}
	s.lines = append(s.lines, line)
	return line
}

func (s *MemStore) Remove(lineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
	}
	return false
}

func (s *MemStore) RemoveByMenu(menuID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	removed := 0
	for _, l := range s.lines {
		if l.MenuID == menuID {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.lines = kept
	return removed
}

func (s *MemStore) SetQuantity(lineID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID != lineID {
			continue
		}
		if qty <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
		s.lines[i].Quantity = qty
		s.lines[i].TotalPrice = qty * s.lines[i].UnitPrice
		return true
	}
	return false
}

func (s *MemStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

func (s *MemStore) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *MemStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.TotalPrice
	}
	return total
}

func (s *MemStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}
