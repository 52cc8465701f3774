package models

import (
	"time"
)

// RateCounter is a windowed request counter persisted in the primary
// database. It backs the shared rate-limit store when no Redis instance is
// configured.
type RateCounter struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Count     int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
