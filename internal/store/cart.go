package store

import (
	"sync"

	"shopapp/internal/models"
)

// CartStore holds the in-progress cart. All operations are synchronous
// reducers over local state; operations on absent product IDs are no-ops.
// Invariant: every line's Sum equals Quantity * ProductPrice, and the
// cart total equals the sum of all line sums.
type CartStore struct {
	items       map[string]models.CartItem
	totalAmount float64
	mu          sync.RWMutex
}

// NewCartStore creates an empty cart.
func NewCartStore() *CartStore {
	return &CartStore{
		items: make(map[string]models.CartItem),
	}
}

// AddToCart adds one unit of the product, creating the line on first add.
func (s *CartStore) AddToCart(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[p.ID]
	if ok {
		item.Quantity++
		item.Sum += p.Price
	} else {
		item = models.CartItem{
			Quantity:     1,
			ProductPrice: p.Price,
			ProductTitle: p.Title,
			Sum:          p.Price,
		}
	}
	s.items[p.ID] = item
	s.totalAmount += p.Price
}

// RemoveFromCart removes one unit of the product. Removing the last unit
// deletes the line; when the cart empties the total is reset to exactly
// zero rather than decremented.
func (s *CartStore) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[productID]
	if !ok {
		return
	}
	if item.Quantity > 1 {
		item.Quantity--
		item.Sum -= item.ProductPrice
		s.items[productID] = item
	} else {
		delete(s.items, productID)
	}

	if len(s.items) > 0 {
		s.totalAmount -= item.ProductPrice
	} else {
		s.totalAmount = 0
	}
}

// DeleteProductFromCart removes the whole line regardless of quantity and
// subtracts its full sum from the total.
func (s *CartStore) DeleteProductFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[productID]
	if !ok {
		return
	}
	s.totalAmount -= item.Sum
	delete(s.items, productID)
}

// ClearCart resets the cart to empty.
func (s *CartStore) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]models.CartItem)
	s.totalAmount = 0
}

// Item returns the line for a product, if present.
func (s *CartStore) Item(productID string) (models.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[productID]
	return item, ok
}

// Items returns a copy of all cart lines keyed by product ID.
func (s *CartStore) Items() map[string]models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make(map[string]models.CartItem, len(s.items))
	for id, item := range s.items {
		items[id] = item
	}
	return items
}

// TotalAmount returns the cart total.
func (s *CartStore) TotalAmount() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.totalAmount
}
