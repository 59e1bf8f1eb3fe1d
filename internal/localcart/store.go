// Package localcart holds the cart for a guest or not-yet-synced session.
// The in-memory list is authoritative; the kv store only makes it survive
// restarts, and persistence failures are logged and swallowed.
package localcart

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loomwear/cartcore/internal/domain"
	"github.com/loomwear/cartcore/internal/kv"
	"github.com/loomwear/cartcore/internal/pricing"
	"github.com/shopspring/decimal"
)

const storageKey = "cart-storage"

// AddOutcome tells the caller whether an add created a new line or bumped
// an existing one, so the UI can word its notification accordingly.
type AddOutcome int

const (
	OutcomeAdded AddOutcome = iota
	OutcomeQuantityUpdated
)

type Store struct {
	mu      sync.RWMutex
	items   []domain.LineItem
	storage kv.Store
}

// NewStore rehydrates the cart from storage. A missing or unreadable
// snapshot starts the cart empty rather than failing.
func NewStore(storage kv.Store) *Store {
	s := &Store{storage: storage}
	s.load()
	return s
}

func (s *Store) load() {
	data, found, err := s.storage.Get(storageKey)
	if err != nil {
		log.Printf("local cart load error: %v", err)
		return
	}
	if !found {
		return
	}

	var items []domain.LineItem
	if errUnmarshal := json.Unmarshal(data, &items); errUnmarshal != nil {
		log.Printf("local cart snapshot unreadable, starting empty: %v", errUnmarshal)
		return
	}
	s.items = items
}

// save persists the current list. Callers hold the lock.
func (s *Store) save() {
	data, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("local cart marshal error: %v", err)
		return
	}
	if errPut := s.storage.Put(storageKey, data); errPut != nil {
		log.Printf("local cart persist error: %v", errPut)
	}
}

// AddItem inserts candidate or, when a line with the same product, size
// and color already exists, sums its quantity into that line. It returns
// the resulting list and which of the two happened. No line ever holds
// a quantity below one: a fresh candidate with a non-positive quantity
// is ignored, and a collapse summing to zero or below removes the line.
func (s *Store) AddItem(candidate domain.LineItem) ([]domain.LineItem, AddOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].SameVariant(candidate) {
			sum := s.items[i].Quantity + candidate.Quantity
			if sum <= 0 {
				s.items = append(s.items[:i], s.items[i+1:]...)
			} else {
				s.items[i].Quantity = sum
			}
			s.save()
			return s.snapshot(), OutcomeQuantityUpdated
		}
	}

	if candidate.Quantity <= 0 {
		return s.snapshot(), OutcomeQuantityUpdated
	}

	candidate.ID = uuid.New().String()
	if candidate.AddedAt.IsZero() {
		candidate.AddedAt = time.Now()
	}
	s.items = append(s.items, candidate)
	s.save()
	return s.snapshot(), OutcomeAdded
}

// RemoveItem deletes the line with the given id. Removing an unknown id
// is a no-op.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Store) removeLocked(id string) {
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.save()
			return
		}
	}
}

// UpdateQuantity sets the line's quantity. A quantity of zero or below
// removes the line. No stock cap is applied here.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(id)
		return
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			s.save()
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.save()
}

// Replace swaps the whole list for remote's contents during
// reconciliation.
func (s *Store) Replace(items []domain.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]domain.LineItem, len(items))
	copy(s.items, items)
	s.save()
}

// Items returns a copy of the current lines.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() []domain.LineItem {
	cp := make([]domain.LineItem, len(s.items))
	copy(cp, s.items)
	return cp
}

// TotalItemCount sums quantities across lines, not the number of lines.
func (s *Store) TotalItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Subtotal delegates to the pricing calculator.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Subtotal(s.items)
}
