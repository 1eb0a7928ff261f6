package cart

import (
	"sync"

	d "github.com/fjod/go_restaurant/domain"
)

// Store is the client-side draft of a purchase. It never touches the network,
// so none of its operations can fail. One Store is owned per shopper and
// injected wherever the draft is read or mutated.
type Store struct {
	mu      sync.RWMutex
	lines   []d.CartLine
	pricing d.Pricing
}

func NewStore(pricing d.Pricing) *Store {
	return &Store{pricing: pricing}
}

// Restore replaces the content with previously persisted lines, dropping any
// line whose quantity is not positive.
func (s *Store) Restore(lines []d.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.lines[:0]
	for _, l := range lines {
		if l.Quantity > 0 {
			s.lines = append(s.lines, l)
		}
	}
}

// AddLine increments an existing line or appends a new one priced at the
// product's current discounted price. A quantity below 1 counts as 1.
func (s *Store) AddLine(product d.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
		return
	}
	s.lines = append(s.lines, d.CartLine{
		ProductID:           product.ID,
		Name:                product.Name,
		UnitPrice:           product.Price,
		DiscountedUnitPrice: product.EffectivePrice(),
		Quantity:            quantity,
		Category:            product.Category,
		ImageRef:            product.ImageRef,
	})
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
// Updating an absent product is a no-op.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveLine(productID)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = quantity
	}
}

func (s *Store) RemoveLine(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []d.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]d.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Snapshot() d.CartSnapshot {
	return s.pricing.Summarize(s.Lines())
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *Store) indexOf(productID int64) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
