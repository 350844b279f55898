package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionStatusPending   = "pending"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPaused    = "paused"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusSuspended = "suspended"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription tracks a customer's recurring plan and mirrors the provider's
// preapproval state. FailedAt is set exactly once per failure episode and
// cleared on successful renewal.
type Subscription struct {
	ID                     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	CustomerID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	PlanID                 uuid.UUID  `gorm:"type:uuid;not null;index" json:"plan_id"`
	ProviderSubscriptionID *string    `gorm:"size:255;uniqueIndex" json:"provider_subscription_id"`
	Status                 string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CurrentPeriodStart     time.Time  `json:"current_period_start"`
	CurrentPeriodEnd       time.Time  `json:"current_period_end"`
	FailedAt               *time.Time `json:"failed_at"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
