package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CashEntryKindIncome  = "income"
	CashEntryKindExpense = "expense"
)

// CashEntry is an append-only ledger row. Uniqueness for webhook-driven
// entries is content-based: callers check for an existing row with the same
// source and an embedded reference token in Notes before inserting.
type CashEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Kind        string    `gorm:"size:10;not null" json:"kind"`
	Source      string    `gorm:"size:50;not null;index" json:"source"`
	Notes       string    `gorm:"type:text" json:"notes"`
	OccurredAt  time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}
