package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderCredential holds a tenant's OAuth tokens for the payment provider.
// One row per tenant; only the refresh routine mutates it, and rows are
// overwritten, never deleted.
type ProviderCredential struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	AccessToken  string     `gorm:"type:text;not null" json:"-"`
	RefreshToken string     `gorm:"type:text" json:"-"`
	PublicKey    string     `gorm:"size:255" json:"public_key"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
