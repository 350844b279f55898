package services

import (
	"encoding/json"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/tenant"
	"github.com/google/uuid"
)

// SettingsSource resolves a tenant's settings. Satisfied by
// tenant.SettingsCache in production wiring.
type SettingsSource interface {
	Get(tenantID uuid.UUID) (*models.TenantSettings, error)
}

var defaultReminderOffsets = []int{3, 1, 0}

func graceHours(s *models.TenantSettings) int {
	if s == nil || s.GraceHours <= 0 {
		return tenant.DefaultGraceHours
	}
	return s.GraceHours
}

func reminderOffsets(s *models.TenantSettings) []int {
	if s == nil || len(s.ReminderOffsetDays) == 0 {
		return defaultReminderOffsets
	}
	var offsets []int
	if err := json.Unmarshal(s.ReminderOffsetDays, &offsets); err != nil || len(offsets) == 0 {
		return defaultReminderOffsets
	}
	return offsets
}
