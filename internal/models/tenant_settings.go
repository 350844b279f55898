package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TenantSettings holds the per-tenant knobs the reconciliation core reads:
// prepayment policy, suspension grace period and renewal reminder offsets.
type TenantSettings struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	RequirePrepayment  bool           `gorm:"default:false" json:"require_prepayment"`
	PrepaymentPercent  int            `gorm:"default:100" json:"prepayment_percent"`
	GraceHours         int            `gorm:"default:48" json:"grace_hours"`
	ReminderOffsetDays datatypes.JSON `gorm:"type:jsonb;default:'[3,1,0]'" json:"reminder_offset_days"`
	Currency           string         `gorm:"size:3;default:'ARS'" json:"currency"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
