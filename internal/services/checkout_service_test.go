package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/provider"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	store    *memStore
	api      *fakeAPI
	svc      *CheckoutService
	tenantID uuid.UUID
	settings *models.TenantSettings
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := newMemStore()
	tenantID := uuid.New()
	exp := time.Now().Add(2 * time.Hour)
	seedCredential(store, tenantID, &exp)

	settings := &models.TenantSettings{
		TenantID:          tenantID,
		PrepaymentPercent: 100,
		GraceHours:        48,
		Currency:          "ARS",
	}

	api := &fakeAPI{}
	creds := NewCredentialService(store, api)
	commission := NewCommissionService(store, 0.05)
	svc := NewCheckoutService(store, creds, commission, &fixedSettings{s: settings}, api)

	return &checkoutFixture{store: store, api: api, svc: svc, tenantID: tenantID, settings: settings}
}

func (f *checkoutFixture) seedBooking(priceCents int64) *models.Booking {
	svcID := uuid.New()
	f.store.services[svcID] = &models.Service{
		ID: svcID, TenantID: f.tenantID, Name: "Haircut", PriceCents: priceCents,
	}
	booking := &models.Booking{
		ID:         uuid.New(),
		TenantID:   f.tenantID,
		CustomerID: uuid.New(),
		StaffID:    uuid.New(),
		ServiceID:  svcID,
		StartsAt:   time.Now().Add(48 * time.Hour),
		EndsAt:     time.Now().Add(49 * time.Hour),
		Status:     models.BookingStatusPending,
	}
	f.store.bookings[booking.ID] = booking
	return booking
}

func TestCheckoutBookingCreatesPendingPaymentFirst(t *testing.T) {
	f := newCheckoutFixture(t)
	booking := f.seedBooking(500000)

	var gotReq *provider.PreferenceRequest
	f.api.createPreference = func(accessToken string, req *provider.PreferenceRequest) (*provider.Preference, error) {
		assert.Equal(t, "access-old", accessToken)
		gotReq = req
		return &provider.Preference{ID: "pref-1", InitPoint: "https://pay.example/pref-1"}, nil
	}

	result, err := f.svc.CheckoutBooking(context.Background(), f.tenantID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/pref-1", result.CheckoutURL)

	require.NotNil(t, gotReq)
	assert.Equal(t, int64(500000), gotReq.AmountCents)
	assert.Equal(t, int64(25000), gotReq.MarketplaceFeeCents)
	assert.Equal(t, result.PaymentID.String(), gotReq.ExternalReference)
	assert.Equal(t, result.PaymentID.String(), gotReq.InternalPaymentID)

	payment, err := f.store.GetPayment(result.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	require.NotNil(t, payment.ExternalID)
	assert.Equal(t, "pref-1", *payment.ExternalID)
}

func TestCheckoutBookingReusesPendingRow(t *testing.T) {
	f := newCheckoutFixture(t)
	booking := f.seedBooking(100000)

	f.api.createPreference = func(_ string, _ *provider.PreferenceRequest) (*provider.Preference, error) {
		return &provider.Preference{ID: "pref-1", InitPoint: "https://pay.example/pref-1"}, nil
	}

	first, err := f.svc.CheckoutBooking(context.Background(), f.tenantID, booking.ID)
	require.NoError(t, err)
	second, err := f.svc.CheckoutBooking(context.Background(), f.tenantID, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Len(t, f.store.payments, 1)
}

func TestCheckoutBookingProviderFailureKeepsPendingRow(t *testing.T) {
	f := newCheckoutFixture(t)
	booking := f.seedBooking(100000)

	f.api.createPreference = func(_ string, _ *provider.PreferenceRequest) (*provider.Preference, error) {
		return nil, errors.New("502 from provider")
	}

	_, err := f.svc.CheckoutBooking(context.Background(), f.tenantID, booking.ID)
	require.Error(t, err)

	pending, err := f.store.FindPendingPaymentForBooking(f.tenantID, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, pending)

	// A retry picks the same row up and succeeds.
	f.api.createPreference = func(_ string, _ *provider.PreferenceRequest) (*provider.Preference, error) {
		return &provider.Preference{ID: "pref-2", InitPoint: "https://pay.example/pref-2"}, nil
	}
	result, err := f.svc.CheckoutBooking(context.Background(), f.tenantID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, result.PaymentID)
}

func TestCheckoutBookingPrepaymentPercent(t *testing.T) {
	f := newCheckoutFixture(t)
	f.settings.RequirePrepayment = true
	f.settings.PrepaymentPercent = 50
	booking := f.seedBooking(100000)

	var gotAmount int64
	f.api.createPreference = func(_ string, req *provider.PreferenceRequest) (*provider.Preference, error) {
		gotAmount = req.AmountCents
		return &provider.Preference{ID: "pref-1", InitPoint: "https://pay.example/pref-1"}, nil
	}

	_, err := f.svc.CheckoutBooking(context.Background(), f.tenantID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), gotAmount)

	updated, err := f.store.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAwaitingPayment, updated.Status)
}

func TestCheckoutBookingNoCredential(t *testing.T) {
	f := newCheckoutFixture(t)
	booking := f.seedBooking(100000)
	delete(f.store.credentials, f.tenantID)

	_, err := f.svc.CheckoutBooking(context.Background(), f.tenantID, booking.ID)
	assert.ErrorIs(t, err, ErrIntegrationNotConfigured)
}

func TestCheckoutBookingWrongTenant(t *testing.T) {
	f := newCheckoutFixture(t)
	booking := f.seedBooking(100000)

	_, err := f.svc.CheckoutBooking(context.Background(), uuid.New(), booking.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutPackageUsesPackagePrice(t *testing.T) {
	f := newCheckoutFixture(t)
	pkg := &models.CustomerPackage{
		ID:            uuid.New(),
		TenantID:      f.tenantID,
		CustomerID:    uuid.New(),
		Name:          "10-class pass",
		PriceCents:    800000,
		Sessions:      10,
		PaymentStatus: models.PackagePaymentPending,
	}
	f.store.packages[pkg.ID] = pkg

	var gotReq *provider.PreferenceRequest
	f.api.createPreference = func(_ string, req *provider.PreferenceRequest) (*provider.Preference, error) {
		gotReq = req
		return &provider.Preference{ID: "pref-1", InitPoint: "https://pay.example/pref-1"}, nil
	}

	result, err := f.svc.CheckoutPackage(context.Background(), f.tenantID, pkg.ID)
	require.NoError(t, err)
	require.NotNil(t, gotReq)
	assert.Equal(t, int64(800000), gotReq.AmountCents)
	assert.Equal(t, "10-class pass", gotReq.Title)

	payment, err := f.store.GetPayment(result.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, payment.CustomerPackageID)
	assert.Equal(t, pkg.ID, *payment.CustomerPackageID)
}

func TestSubscribePlanStoresProviderID(t *testing.T) {
	f := newCheckoutFixture(t)
	plan := &models.Plan{
		ID: uuid.New(), TenantID: f.tenantID, Name: "Monthly", PriceCents: 300000, Currency: "ARS", PeriodMonths: 1,
	}
	f.store.plans[plan.ID] = plan
	customer := &models.Customer{ID: uuid.New(), TenantID: f.tenantID, Name: "Ana", Email: "ana@example.com"}
	f.store.customers[customer.ID] = customer

	f.api.createPreapproval = func(_ string, req *provider.PreapprovalRequest) (*provider.Preapproval, error) {
		assert.Equal(t, "ana@example.com", req.PayerEmail)
		assert.Equal(t, int64(300000), req.AmountCents)
		return &provider.Preapproval{ID: "pre-1", InitPoint: "https://pay.example/pre-1", Status: "pending"}, nil
	}

	result, err := f.svc.SubscribePlan(context.Background(), f.tenantID, customer.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/pre-1", result.CheckoutURL)

	sub, err := f.store.GetSubscription(result.SubscriptionID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, models.SubscriptionStatusPending, sub.Status)
	require.NotNil(t, sub.ProviderSubscriptionID)
	assert.Equal(t, "pre-1", *sub.ProviderSubscriptionID)
}

func TestSubscribePlanProviderFailureKeepsPendingSubscription(t *testing.T) {
	f := newCheckoutFixture(t)
	plan := &models.Plan{ID: uuid.New(), TenantID: f.tenantID, Name: "Monthly", PriceCents: 300000, Currency: "ARS", PeriodMonths: 1}
	f.store.plans[plan.ID] = plan
	customer := &models.Customer{ID: uuid.New(), TenantID: f.tenantID, Name: "Ana"}
	f.store.customers[customer.ID] = customer

	f.api.createPreapproval = func(_ string, _ *provider.PreapprovalRequest) (*provider.Preapproval, error) {
		return nil, errors.New("503 from provider")
	}

	_, err := f.svc.SubscribePlan(context.Background(), f.tenantID, customer.ID, plan.ID)
	require.Error(t, err)
	assert.Len(t, f.store.subscriptions, 1)
}
