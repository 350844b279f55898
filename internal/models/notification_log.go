package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLog is the at-most-once gate for outbound messages. Existence
// of a row for a dedup key means "already sent".
type NotificationLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	EventType      string     `gorm:"size:100;not null;index" json:"event_type"`
	DedupKey       string     `gorm:"size:255;not null;uniqueIndex" json:"dedup_key"`
	CustomerID     *uuid.UUID `gorm:"type:uuid" json:"customer_id"`
	SubscriptionID *uuid.UUID `gorm:"type:uuid" json:"subscription_id"`
	BookingID      *uuid.UUID `gorm:"type:uuid" json:"booking_id"`
	SentAt         time.Time  `gorm:"not null" json:"sent_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
