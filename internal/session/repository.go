package session

import "shopapp/internal/models"

// Key is the single durable-storage key. Only one session is persisted at
// a time; a new save overwrites the previous one.
const Key = "userData"

// Repository defines durable storage for the authentication session.
type Repository interface {
	Save(rec *models.SessionRecord) error
	// Load returns the persisted session, or nil when none is stored.
	Load() (*models.SessionRecord, error)
	Clear() error
}
