package store

import (
	"context"
	"sort"
	"sync"

	"shopapp/internal/models"
	"shopapp/internal/remote"
)

// ProductStore holds the two catalog views: every available product and
// the subset owned by the current user. Remote writes are followed by a
// local echo so the views stay consistent without refetching.
type ProductStore struct {
	syncState
	available []models.Product
	owned     []models.Product
	mu        sync.RWMutex

	client *remote.StoreClient
	creds  Credentials
}

// NewProductStore creates a new ProductStore.
func NewProductStore(client *remote.StoreClient, creds Credentials) *ProductStore {
	return &ProductStore{
		syncState: newSyncState(),
		client:    client,
		creds:     creds,
	}
}

// FetchProducts retrieves the full remote collection and replaces both
// views wholesale, partitioning owned products by the current user id.
func (s *ProductStore) FetchProducts(ctx context.Context) error {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()

	docs, err := s.client.ListProducts(ctx)
	userID := s.creds.UserID()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return err
	}
	if err != nil {
		s.fail(err)
		return err
	}

	available := make([]models.Product, 0, len(docs))
	for key, doc := range docs {
		available = append(available, doc.Product(key))
	}
	// Document keys sort chronologically; keep a stable listing.
	sort.Slice(available, func(i, j int) bool {
		return available[i].ID < available[j].ID
	})

	owned := make([]models.Product, 0)
	for _, p := range available {
		if p.OwnerID == userID {
			owned = append(owned, p)
		}
	}

	s.available = available
	s.owned = owned
	s.succeed()
	return nil
}

// AddProduct creates the product remotely and echoes it into both views
// under the server-assigned id. The echo is an upsert, so a concurrent
// refresh that already delivered the new entry is not duplicated.
func (s *ProductStore) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()

	doc := remote.ProductDoc{
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		OwnerID:     s.creds.UserID(),
	}
	id, err := s.client.CreateProduct(ctx, s.creds.Token(), doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return models.Product{}, err
	}
	if err != nil {
		s.fail(err)
		return models.Product{}, err
	}

	created := doc.Product(id)
	s.upsertLocked(created)
	s.succeed()
	return created, nil
}

// UpdateProduct patches the product remotely, then updates the matching
// entry in both views by id. The owner of an existing entry is preserved.
func (s *ProductStore) UpdateProduct(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()

	doc := remote.ProductDoc{
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
	}
	err := s.client.UpdateProduct(ctx, s.creds.Token(), p.ID, doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return err
	}
	if err != nil {
		s.fail(err)
		return err
	}

	for i := range s.available {
		if s.available[i].ID == p.ID {
			p.OwnerID = s.available[i].OwnerID
			s.available[i] = p
			break
		}
	}
	for i := range s.owned {
		if s.owned[i].ID == p.ID {
			s.owned[i] = p
			break
		}
	}
	s.succeed()
	return nil
}

// DeleteProduct deletes the product remotely, then removes the matching
// entry from both views.
func (s *ProductStore) DeleteProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()

	err := s.client.DeleteProduct(ctx, s.creds.Token(), productID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return err
	}
	if err != nil {
		s.fail(err)
		return err
	}

	s.available = removeByID(s.available, productID)
	s.owned = removeByID(s.owned, productID)
	s.succeed()
	return nil
}

// upsertLocked applies update-or-insert by id to both views.
func (s *ProductStore) upsertLocked(p models.Product) {
	if !replaceByID(s.available, p) {
		s.available = append(s.available, p)
	}
	if replaceByID(s.owned, p) {
		return
	}
	if p.OwnerID == s.creds.UserID() {
		s.owned = append(s.owned, p)
	}
}

func replaceByID(list []models.Product, p models.Product) bool {
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = p
			return true
		}
	}
	return false
}

func removeByID(list []models.Product, id string) []models.Product {
	kept := list[:0]
	for _, p := range list {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return kept
}

// Available returns a copy of the full catalog view.
func (s *ProductStore) Available() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.available...)
}

// Owned returns a copy of the current user's catalog view.
func (s *ProductStore) Owned() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.owned...)
}

// Status returns the container's request status.
func (s *ProductStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the last recorded error message.
func (s *ProductStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
