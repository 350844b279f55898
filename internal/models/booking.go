package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingStatusPending         = "pending"
	BookingStatusAwaitingPayment = "awaiting_payment"
	BookingStatusConfirmed       = "confirmed"
	BookingStatusExpired         = "expired"
	BookingStatusCancelled       = "cancelled"
)

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	StaffID    uuid.UUID `gorm:"type:uuid;not null;index" json:"staff_id"`
	ServiceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`
	StartsAt   time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt     time.Time `gorm:"not null" json:"ends_at"`
	Status     string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
