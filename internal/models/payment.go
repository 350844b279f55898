package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PaymentStatusPending        = "pending"
	PaymentStatusPaid           = "paid"
	PaymentStatusFailed         = "failed"
	PaymentStatusCancelled      = "cancelled"
	PaymentStatusRefundRequired = "refund_required"
)

// Payment is the local source of truth for a booking or package charge.
// The row is created in `pending` before the provider call returns, so a
// webhook that arrives early always finds something to update.
type Payment struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	BookingID         *uuid.UUID     `gorm:"type:uuid;index" json:"booking_id"`
	CustomerPackageID *uuid.UUID     `gorm:"type:uuid;index" json:"customer_package_id"`
	AmountCents       int64          `gorm:"not null" json:"amount_cents"`
	Currency          string         `gorm:"size:3;not null" json:"currency"`
	Provider          string         `gorm:"size:50;not null;default:'mercadopago'" json:"provider"`
	ExternalID        *string        `gorm:"size:255;index" json:"external_id"`
	Status            string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CheckoutURL       string         `gorm:"type:text" json:"checkout_url"`
	ExpiresAt         *time.Time     `json:"expires_at"`
	Metadata          datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
