package cart

import (
	"errors"
	"math"
	"sync"
	"time"

	"tiffin/models"
)

var (
	// ErrAlreadyInCart is surfaced to the user as "already in cart"; the
	// existing entry is never silently merged or overwritten.
	ErrAlreadyInCart = errors.New("already in cart")
	ErrNotInCart     = errors.New("entry not in cart")
	ErrInvalidPlan   = errors.New("invalid plan")
)

// Store holds one buyer's in-progress selection. It is handed to every
// consumer by reference; its methods are the only mutation surface.
type Store struct {
	mu      sync.Mutex
	entries []models.CartEntry
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces the store contents with a persisted snapshot.
func (s *Store) Load(entries []models.CartEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]models.CartEntry(nil), entries...)
}

// Entries returns a copy of the current cart.
func (s *Store) Entries() []models.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartEntry(nil), s.entries...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// AddToCart derives an entry from the menu's selected tier and appends it.
// A (menu, plan) pair may appear at most once; duplicates are rejected.
func (s *Store) AddToCart(menu *models.Menu, plan models.Plan, quantity int) (models.CartEntry, error) {
	if !plan.Valid() {
		return models.CartEntry{}, ErrInvalidPlan
	}
	price, err := menu.PriceForPlan(plan)
	if err != nil {
		return models.CartEntry{}, err
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.MenuID == menu.MenuID && e.SelectedPlan == plan {
			return models.CartEntry{}, ErrAlreadyInCart
		}
	}

	entry := models.CartEntry{
		MenuID:       menu.MenuID,
		ChefID:       menu.ChefID,
		Heading:      menu.Heading,
		SelectedPlan: plan,
		Quantity:     quantity,
		Price:        price,
		AddedAt:      time.Now(),
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

// RemoveFromCart deletes the unique (menu, plan) match; removing an absent
// entry is a no-op.
func (s *Store) RemoveFromCart(menuID string, plan models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.MenuID == menuID && e.SelectedPlan == plan {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// UpdateCartItem replaces quantity and/or plan on an existing entry and
// recomputes the price from the menu; the price is never edited directly.
func (s *Store) UpdateCartItem(menu *models.Menu, oldPlan, newPlan models.Plan, quantity int) (models.CartEntry, error) {
	if !newPlan.Valid() {
		return models.CartEntry{}, ErrInvalidPlan
	}
	price, err := menu.PriceForPlan(newPlan)
	if err != nil {
		return models.CartEntry{}, err
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, e := range s.entries {
		if e.MenuID == menu.MenuID && e.SelectedPlan == oldPlan {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.CartEntry{}, ErrNotInCart
	}

	if newPlan != oldPlan {
		for i, e := range s.entries {
			if i != idx && e.MenuID == menu.MenuID && e.SelectedPlan == newPlan {
				return models.CartEntry{}, ErrAlreadyInCart
			}
		}
	}

	s.entries[idx].SelectedPlan = newPlan
	s.entries[idx].Quantity = quantity
	s.entries[idx].Price = price
	return s.entries[idx], nil
}

// ComputeOrderTotal returns the entry amount in minor currency units.
func ComputeOrderTotal(entry models.CartEntry) int64 {
	qty := entry.Quantity
	if qty < 1 {
		qty = 1
	}
	return int64(math.Round(entry.Price * float64(qty) * 100))
}

// Total sums ComputeOrderTotal over the whole cart, in cents.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, e := range s.entries {
		total += ComputeOrderTotal(e)
	}
	return total
}
