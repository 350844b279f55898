package models

import (
	"time"

	"github.com/google/uuid"
)

// MessagingChannel is a tenant's connected WhatsApp instance on the relay.
type MessagingChannel struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Provider   string    `gorm:"size:50;not null;default:'whatsapp'" json:"provider"`
	InstanceID string    `gorm:"size:255;not null" json:"instance_id"`
	Token      string    `gorm:"size:255" json:"-"`
	Active     bool      `gorm:"default:true;index" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
