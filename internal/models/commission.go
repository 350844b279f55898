package models

import (
	"time"

	"github.com/google/uuid"
)

// CommissionFee records the platform's take on one collected payment.
// The unique payment_id index makes the insert naturally idempotent.
type CommissionFee struct {
	ID                     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID               uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	PaymentID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"payment_id"`
	TransactionAmountCents int64     `gorm:"not null" json:"transaction_amount_cents"`
	CommissionRate         float64   `gorm:"not null" json:"commission_rate"`
	FeeAmountCents         int64     `gorm:"not null" json:"fee_amount_cents"`
	Status                 string    `gorm:"size:20;not null;default:'recorded'" json:"status"`
	CreatedAt              time.Time `json:"created_at"`
}

// CommissionRate is a dated take-rate row. The effective rate for a tenant at
// an instant is the newest row whose EffectiveFrom is not in the future.
type CommissionRate struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Rate          float64   `gorm:"not null" json:"rate"`
	EffectiveFrom time.Time `gorm:"not null;index" json:"effective_from"`
	CreatedAt     time.Time `json:"created_at"`
}
