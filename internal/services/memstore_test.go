package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/provider"
	"github.com/google/uuid"
)

// memStore is an in-memory Store used by the service tests. It mirrors the
// persistence semantics the services rely on: (nil, nil) lookups, unique-key
// upserts and content-based cash entry checks.
type memStore struct {
	mu sync.Mutex

	credentials   map[uuid.UUID]*models.ProviderCredential
	settings      map[uuid.UUID]*models.TenantSettings
	channels      map[uuid.UUID]*models.MessagingChannel
	payments      map[uuid.UUID]*models.Payment
	bookings      map[uuid.UUID]*models.Booking
	customers     map[uuid.UUID]*models.Customer
	services      map[uuid.UUID]*models.Service
	packages      map[uuid.UUID]*models.CustomerPackage
	plans         map[uuid.UUID]*models.Plan
	planItems     map[uuid.UUID][]models.PlanItem
	subscriptions map[uuid.UUID]*models.Subscription
	usage         map[string]*models.SubscriptionUsage
	cashEntries   []models.CashEntry
	rates         []models.CommissionRate
	fees          map[uuid.UUID]*models.CommissionFee
	notifications map[string]*models.NotificationLog

	saveCredentialErr error
}

func newMemStore() *memStore {
	return &memStore{
		credentials:   make(map[uuid.UUID]*models.ProviderCredential),
		settings:      make(map[uuid.UUID]*models.TenantSettings),
		channels:      make(map[uuid.UUID]*models.MessagingChannel),
		payments:      make(map[uuid.UUID]*models.Payment),
		bookings:      make(map[uuid.UUID]*models.Booking),
		customers:     make(map[uuid.UUID]*models.Customer),
		services:      make(map[uuid.UUID]*models.Service),
		packages:      make(map[uuid.UUID]*models.CustomerPackage),
		plans:         make(map[uuid.UUID]*models.Plan),
		planItems:     make(map[uuid.UUID][]models.PlanItem),
		subscriptions: make(map[uuid.UUID]*models.Subscription),
		usage:         make(map[string]*models.SubscriptionUsage),
		fees:          make(map[uuid.UUID]*models.CommissionFee),
		notifications: make(map[string]*models.NotificationLog),
	}
}

func (m *memStore) GetCredential(tenantID uuid.UUID) (*models.ProviderCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.credentials[tenantID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ListCredentials() ([]models.ProviderCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ProviderCredential, 0, len(m.credentials))
	for _, c := range m.credentials {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memStore) SaveCredential(c *models.ProviderCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveCredentialErr != nil {
		return m.saveCredentialErr
	}
	cp := *c
	m.credentials[c.TenantID] = &cp
	return nil
}

func (m *memStore) GetTenantSettings(tenantID uuid.UUID) (*models.TenantSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[tenantID]; ok {
		return s, nil
	}
	return nil, nil
}

func (m *memStore) GetActiveChannel(tenantID uuid.UUID) (*models.MessagingChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[tenantID]; ok && ch.Active {
		return ch, nil
	}
	return nil, nil
}

func (m *memStore) GetPayment(id uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) FindPaymentByBooking(bookingID uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.BookingID != nil && *p.BookingID == bookingID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindPendingPaymentForBooking(tenantID, bookingID uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TenantID == tenantID && p.BookingID != nil && *p.BookingID == bookingID && p.Status == models.PaymentStatusPending {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindPendingPaymentForPackage(tenantID, packageID uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TenantID == tenantID && p.CustomerPackageID != nil && *p.CustomerPackageID == packageID && p.Status == models.PaymentStatusPending {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreatePayment(p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *memStore) UpdatePayment(id uuid.UUID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			p.Status = v.(string)
		case "external_id":
			s := v.(string)
			p.ExternalID = &s
		case "checkout_url":
			p.CheckoutURL = v.(string)
		case "expires_at":
			t := v.(time.Time)
			p.ExpiresAt = &t
		}
	}
	return nil
}

func (m *memStore) GetBooking(id uuid.UUID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) UpdateBookingStatus(id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		b.Status = status
	}
	return nil
}

func (m *memStore) HasBookingConflict(b *models.Booking) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := map[string]bool{
		models.BookingStatusPending:         true,
		models.BookingStatusAwaitingPayment: true,
		models.BookingStatusConfirmed:       true,
	}
	for _, other := range m.bookings {
		if other.ID == b.ID || other.StaffID != b.StaffID || !live[other.Status] {
			continue
		}
		if other.StartsAt.Before(b.EndsAt) && b.StartsAt.Before(other.EndsAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetCustomer(id uuid.UUID) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) GetService(id uuid.UUID) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.services[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) GetCustomerPackage(id uuid.UUID) (*models.CustomerPackage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.packages[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) UpdateCustomerPackage(id uuid.UUID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[id]
	if !ok {
		return nil
	}
	if v, ok := updates["payment_status"]; ok {
		p.PaymentStatus = v.(string)
	}
	return nil
}

func (m *memStore) GetPlan(id uuid.UUID) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ListPlanItems(planID uuid.UUID) ([]models.PlanItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PlanItem(nil), m.planItems[planID]...), nil
}

func (m *memStore) GetSubscription(id uuid.UUID) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subscriptions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) FindSubscriptionByProviderID(providerSubscriptionID string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subscriptions {
		if s.ProviderSubscriptionID != nil && *s.ProviderSubscriptionID == providerSubscriptionID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateSubscription(s *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	m.subscriptions[s.ID] = &cp
	return nil
}

func (m *memStore) UpdateSubscription(id uuid.UUID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subscriptions[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			s.Status = v.(string)
		case "provider_subscription_id":
			id := v.(string)
			s.ProviderSubscriptionID = &id
		case "current_period_start":
			s.CurrentPeriodStart = v.(time.Time)
		case "current_period_end":
			s.CurrentPeriodEnd = v.(time.Time)
		case "failed_at":
			if v == nil {
				s.FailedAt = nil
			} else {
				t := v.(time.Time)
				s.FailedAt = &t
			}
		}
	}
	return nil
}

func (m *memStore) ListSubscriptionsByStatus(status string) ([]models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Subscription
	for _, s := range m.subscriptions {
		if s.Status == status {
			out = append(out, *s)
		}
	}
	return out, nil
}

func usageKey(subscriptionID, serviceID uuid.UUID, periodStart time.Time) string {
	return subscriptionID.String() + "|" + serviceID.String() + "|" + periodStart.Format(time.RFC3339Nano)
}

func (m *memStore) UpsertUsage(u *models.SubscriptionUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := usageKey(u.SubscriptionID, u.ServiceID, u.PeriodStart)
	if _, exists := m.usage[key]; exists {
		return nil
	}
	cp := *u
	m.usage[key] = &cp
	return nil
}

func (m *memStore) HasCashEntryWithRef(tenantID uuid.UUID, source, refToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cashEntries {
		e := &m.cashEntries[i]
		if e.TenantID == tenantID && e.Source == source && strings.Contains(e.Notes, refToken) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateCashEntry(e *models.CashEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cashEntries = append(m.cashEntries, *e)
	return nil
}

func (m *memStore) CommissionRateFor(tenantID uuid.UUID, at time.Time) (*models.CommissionRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.CommissionRate
	for i := range m.rates {
		r := &m.rates[i]
		if r.TenantID != tenantID || r.EffectiveFrom.After(at) {
			continue
		}
		if best == nil || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *memStore) CreateCommissionFeeIfAbsent(f *models.CommissionFee) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.fees[f.PaymentID]; exists {
		return false, nil
	}
	cp := *f
	m.fees[f.PaymentID] = &cp
	return true, nil
}

func (m *memStore) NotificationExists(dedupKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.notifications[dedupKey]
	return ok, nil
}

func (m *memStore) UpsertNotificationLog(n *models.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.notifications[n.DedupKey]; exists {
		return nil
	}
	cp := *n
	m.notifications[n.DedupKey] = &cp
	return nil
}

// fakeAPI is a configurable provider.API. Unset hooks fail loudly so a test
// only exercises the calls it expects.
type fakeAPI struct {
	refreshToken         func(refreshToken string) (*provider.TokenResponse, error)
	getPayment           func(accessToken, id string) (*provider.Payment, error)
	getPreapproval       func(accessToken, id string) (*provider.Preapproval, error)
	getAuthorizedPayment func(accessToken, id string) (*provider.AuthorizedPayment, error)
	createPreference     func(accessToken string, req *provider.PreferenceRequest) (*provider.Preference, error)
	createPreapproval    func(accessToken string, req *provider.PreapprovalRequest) (*provider.Preapproval, error)
	updatePreapproval    func(accessToken, id, status string) (*provider.Preapproval, error)
}

func (f *fakeAPI) RefreshToken(_ context.Context, refreshToken string) (*provider.TokenResponse, error) {
	if f.refreshToken == nil {
		panic("unexpected RefreshToken call")
	}
	return f.refreshToken(refreshToken)
}

func (f *fakeAPI) GetPayment(_ context.Context, accessToken, id string) (*provider.Payment, error) {
	if f.getPayment == nil {
		panic("unexpected GetPayment call")
	}
	return f.getPayment(accessToken, id)
}

func (f *fakeAPI) GetPreapproval(_ context.Context, accessToken, id string) (*provider.Preapproval, error) {
	if f.getPreapproval == nil {
		panic("unexpected GetPreapproval call")
	}
	return f.getPreapproval(accessToken, id)
}

func (f *fakeAPI) GetAuthorizedPayment(_ context.Context, accessToken, id string) (*provider.AuthorizedPayment, error) {
	if f.getAuthorizedPayment == nil {
		panic("unexpected GetAuthorizedPayment call")
	}
	return f.getAuthorizedPayment(accessToken, id)
}

func (f *fakeAPI) CreatePreference(_ context.Context, accessToken string, req *provider.PreferenceRequest) (*provider.Preference, error) {
	if f.createPreference == nil {
		panic("unexpected CreatePreference call")
	}
	return f.createPreference(accessToken, req)
}

func (f *fakeAPI) CreatePreapproval(_ context.Context, accessToken string, req *provider.PreapprovalRequest) (*provider.Preapproval, error) {
	if f.createPreapproval == nil {
		panic("unexpected CreatePreapproval call")
	}
	return f.createPreapproval(accessToken, req)
}

func (f *fakeAPI) UpdatePreapproval(_ context.Context, accessToken, id, status string) (*provider.Preapproval, error) {
	if f.updatePreapproval == nil {
		panic("unexpected UpdatePreapproval call")
	}
	return f.updatePreapproval(accessToken, id, status)
}

// fakeSender records dispatched messages.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
}

type sentMessage struct {
	InstanceID string
	Phone      string
	Message    string
}

func (f *fakeSender) Configured() bool { return true }

func (f *fakeSender) SendText(_ context.Context, instanceID, _ string, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{InstanceID: instanceID, Phone: phone, Message: message})
	return f.sendErr
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fixedSettings satisfies SettingsSource with one settings row for all
// tenants.
type fixedSettings struct {
	s *models.TenantSettings
}

func (f *fixedSettings) Get(uuid.UUID) (*models.TenantSettings, error) {
	return f.s, nil
}
