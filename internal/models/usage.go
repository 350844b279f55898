package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SubscriptionUsage counts sessions consumed per service within one billing
// period. Keyed by (subscription, service, period_start) so re-seeding a
// period is an upsert, never a duplicate.
type SubscriptionUsage struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubscriptionID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_usage_sub_service_period" json:"subscription_id"`
	ServiceID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_usage_sub_service_period" json:"service_id"`
	PeriodStart    time.Time      `gorm:"not null;uniqueIndex:idx_usage_sub_service_period" json:"period_start"`
	PeriodEnd      time.Time      `gorm:"not null" json:"period_end"`
	SessionsUsed   int            `gorm:"not null;default:0" json:"sessions_used"`
	SessionsLimit  int            `gorm:"not null" json:"sessions_limit"`
	BookingIDs     datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"booking_ids"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
