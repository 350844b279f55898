package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PackagePaymentPending   = "pending"
	PackagePaymentConfirmed = "confirmed"
)

// CustomerPackage is a prepaid bundle of sessions bought by a customer.
// PriceCents overrides the per-service price at checkout.
type CustomerPackage struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	PriceCents    int64     `gorm:"not null" json:"price_cents"`
	Sessions      int       `gorm:"not null" json:"sessions"`
	PaymentStatus string    `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
