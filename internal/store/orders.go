package store

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"shopapp/internal/models"
	"shopapp/internal/remote"
)

// orderDateLayout is the server-formatted creation timestamp attached to
// every stored order.
const orderDateLayout = "January 2 2006, 15:04"

// Publisher emits checkout events to the message broker. OrderStore
// tolerates a nil Publisher; publication is then skipped.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderStore holds the current user's order history. Orders are
// append-only: there is no update or delete.
type OrderStore struct {
	syncState
	orders []models.Order
	mu     sync.RWMutex

	client *remote.StoreClient
	creds  Credentials
	events Publisher
}

// NewOrderStore creates a new OrderStore. events may be nil.
func NewOrderStore(client *remote.StoreClient, creds Credentials, events Publisher) *OrderStore {
	return &OrderStore{
		syncState: newSyncState(),
		client:    client,
		creds:     creds,
		events:    events,
	}
}

// FetchOrders retrieves the user's remote order collection and replaces
// the local list wholesale, tagging each entry with its document key.
func (s *OrderStore) FetchOrders(ctx context.Context) error {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()

	docs, err := s.client.ListOrders(ctx, s.creds.UserID())

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return err
	}
	if err != nil {
		s.fail(err)
		return err
	}

	orders := make([]models.Order, 0, len(docs))
	for key, doc := range docs {
		orders = append(orders, doc.Order(key))
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID < orders[j].ID
	})

	s.orders = orders
	s.succeed()
	return nil
}

// AddOrder creates an order remotely from the given cart lines and
// reconstructs it locally from the submitted arguments plus the
// server-assigned id; the response's echoed fields are not trusted.
func (s *OrderStore) AddOrder(ctx context.Context, items map[string]models.CartItem, totalAmount float64) (models.Order, error) {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()

	userID := s.creds.UserID()
	doc := remote.OrderDoc{
		Items:       items,
		TotalAmount: totalAmount,
		Date:        time.Now().Format(orderDateLayout),
	}
	id, err := s.client.CreateOrder(ctx, s.creds.Token(), userID, doc)

	s.mu.Lock()
	if !s.current(gen) {
		s.mu.Unlock()
		return models.Order{}, err
	}
	if err != nil {
		s.fail(err)
		s.mu.Unlock()
		return models.Order{}, err
	}

	order := models.Order{
		ID:          id,
		Items:       items,
		TotalAmount: totalAmount,
		Date:        doc.Date,
	}
	s.orders = append(s.orders, order)
	s.succeed()
	s.mu.Unlock()

	s.publishCheckout(order, userID)
	return order, nil
}

// publishCheckout emits the checkout event. Publication failures are
// logged, never propagated; the order is already committed.
func (s *OrderStore) publishCheckout(order models.Order, userID string) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"orderId":     order.ID,
		"userId":      userID,
		"totalAmount": order.TotalAmount,
		"date":        order.Date,
	})
	if err != nil {
		log.Printf("Warning: failed to marshal checkout event for order %s: %v", order.ID, err)
		return
	}
	if err := s.events.Publish("", "checkout_queue", body); err != nil {
		log.Printf("Warning: failed to publish checkout event for order %s: %v", order.ID, err)
	}
}

// Orders returns a copy of the order history.
func (s *OrderStore) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Order(nil), s.orders...)
}

// Status returns the container's request status.
func (s *OrderStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the last recorded error message.
func (s *OrderStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
