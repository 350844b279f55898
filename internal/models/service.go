package models

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable offering (haircut, class, session) with a price the
// checkout initiator charges against.
type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	PriceCents  int64     `gorm:"not null" json:"price_cents"`
	DurationMin int       `gorm:"not null;default:30" json:"duration_min"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
