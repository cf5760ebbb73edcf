package session

import (
	"sync"

	"shopapp/internal/models"
)

// MockRepository is an in-memory implementation of Repository.
type MockRepository struct {
	rec *models.SessionRecord
	mu  sync.RWMutex
}

// NewMockRepository creates a new instance of MockRepository.
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// Save stores the session in memory, replacing any previous one.
func (r *MockRepository) Save(rec *models.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *rec
	copied.Key = Key
	r.rec = &copied
	return nil
}

// Load returns the stored session, or nil when none is stored.
func (r *MockRepository) Load() (*models.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.rec == nil {
		return nil, nil
	}
	copied := *r.rec
	return &copied, nil
}

// Clear drops the stored session.
func (r *MockRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rec = nil
	return nil
}
