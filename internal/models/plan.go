package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a recurring subscription offering.
type Plan struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	PriceCents   int64     `gorm:"not null" json:"price_cents"`
	Currency     string    `gorm:"size:3;not null" json:"currency"`
	PeriodMonths int       `gorm:"not null;default:1" json:"period_months"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlanItem grants a number of sessions of one service per billing period.
// These seed the per-period usage rows when a subscription activates.
type PlanItem struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PlanID        uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	ServiceID     uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
	SessionsLimit int       `gorm:"not null" json:"sessions_limit"`
	CreatedAt     time.Time `json:"created_at"`
}
