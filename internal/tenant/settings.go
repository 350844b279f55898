package tenant

import (
	"sync"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/google/uuid"
)

// Defaults applied when a tenant has no settings row.
const (
	DefaultGraceHours        = 48
	DefaultPrepaymentPercent = 100
)

// SettingsStore loads a tenant's settings row; (nil, nil) when none exists.
type SettingsStore interface {
	GetTenantSettings(tenantID uuid.UUID) (*models.TenantSettings, error)
}

// SettingsCache is a read-through cache over tenant settings. Settings change
// rarely and are read on every sweep iteration and checkout, so cached rows
// are kept until invalidated.
type SettingsCache struct {
	store SettingsStore
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.TenantSettings
}

func NewSettingsCache(store SettingsStore) *SettingsCache {
	return &SettingsCache{
		store: store,
		byID:  make(map[uuid.UUID]*models.TenantSettings),
	}
}

// Get returns the tenant's settings, falling back to defaults when the tenant
// has no row.
func (c *SettingsCache) Get(tenantID uuid.UUID) (*models.TenantSettings, error) {
	c.mu.RLock()
	if s, ok := c.byID[tenantID]; ok {
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	s, err := c.store.GetTenantSettings(tenantID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &models.TenantSettings{
			TenantID:          tenantID,
			PrepaymentPercent: DefaultPrepaymentPercent,
			GraceHours:        DefaultGraceHours,
		}
	}

	c.mu.Lock()
	c.byID[tenantID] = s
	c.mu.Unlock()
	return s, nil
}

func (c *SettingsCache) Invalidate(tenantID uuid.UUID) {
	c.mu.Lock()
	delete(c.byID, tenantID)
	c.mu.Unlock()
}
