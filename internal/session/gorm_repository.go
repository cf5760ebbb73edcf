package session

import (
	"fmt"

	"shopapp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRepository is a GORM implementation of Repository backed by a local
// database file.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new instance of GORMRepository.
func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{
		db: db,
	}
}

// Save writes the session under the fixed key, replacing any previous one.
func (r *GORMRepository) Save(rec *models.SessionRecord) error {
	rec.Key = Key
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads the persisted session. A missing row is not an error.
func (r *GORMRepository) Load() (*models.SessionRecord, error) {
	var rec models.SessionRecord
	if err := r.db.First(&rec, "key = ?", Key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &rec, nil
}

// Clear removes the persisted session if present.
func (r *GORMRepository) Clear() error {
	if err := r.db.Delete(&models.SessionRecord{}, "key = ?", Key).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
