package models

import "time"

// SessionRecord is the durable copy of the authentication session.
// Only one session is persisted at a time, under a fixed key.
type SessionRecord struct {
	Key        string    `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Token      string    `json:"token" gorm:"type:text"`
	UserID     string    `json:"userId" gorm:"type:varchar(128)"`
	ExpiryDate time.Time `json:"expiryDate"`
}
