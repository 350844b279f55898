package services

import (
	"context"
	"fmt"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/provider"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/google/uuid"
)

// Hosted checkout links stay payable for one day.
const checkoutExpiry = 24 * time.Hour

type CheckoutResult struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	CheckoutURL string    `json:"checkout_url"`
}

type SubscribeResult struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CheckoutURL    string    `json:"checkout_url"`
}

// CheckoutService creates provider-side payment intents with a local pending
// row written first, so a webhook arriving before the synchronous response
// always finds a row to update.
type CheckoutService struct {
	store      repository.Store
	creds      *CredentialService
	commission *CommissionService
	settings   SettingsSource
	api        provider.API
}

func NewCheckoutService(store repository.Store, creds *CredentialService, commission *CommissionService, settings SettingsSource, api provider.API) *CheckoutService {
	return &CheckoutService{store: store, creds: creds, commission: commission, settings: settings, api: api}
}

// CheckoutBooking creates (or reuses) the pending payment for a booking and
// returns the hosted checkout URL. Provider failure leaves the pending row
// intact and retryable.
func (s *CheckoutService) CheckoutBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*CheckoutResult, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil || booking.TenantID != tenantID {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	svc, err := s.store.GetService(booking.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("service %s: %w", booking.ServiceID, ErrNotFound)
	}

	settings, err := s.settings.Get(tenantID)
	if err != nil {
		return nil, err
	}

	amount := svc.PriceCents
	if settings.RequirePrepayment && settings.PrepaymentPercent > 0 && settings.PrepaymentPercent < 100 {
		amount = amount * int64(settings.PrepaymentPercent) / 100
	}

	token, err := s.creds.GetValidToken(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrIntegrationNotConfigured
	}

	payment, err := s.store.FindPendingPaymentForBooking(tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		payment = &models.Payment{
			ID:          uuid.New(),
			TenantID:    tenantID,
			BookingID:   &booking.ID,
			AmountCents: amount,
			Currency:    currencyOr(settings.Currency),
			Status:      models.PaymentStatusPending,
		}
		if err := s.store.CreatePayment(payment); err != nil {
			return nil, err
		}
	}

	result, err := s.createPreference(ctx, token.AccessToken, payment, svc.Name)
	if err != nil {
		return nil, err
	}

	if settings.RequirePrepayment && booking.Status == models.BookingStatusPending {
		if err := s.store.UpdateBookingStatus(booking.ID, models.BookingStatusAwaitingPayment); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// CheckoutPackage charges the package's own price (an override of any
// per-service pricing).
func (s *CheckoutService) CheckoutPackage(ctx context.Context, tenantID, packageID uuid.UUID) (*CheckoutResult, error) {
	pkg, err := s.store.GetCustomerPackage(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil || pkg.TenantID != tenantID {
		return nil, fmt.Errorf("package %s: %w", packageID, ErrNotFound)
	}

	settings, err := s.settings.Get(tenantID)
	if err != nil {
		return nil, err
	}

	token, err := s.creds.GetValidToken(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrIntegrationNotConfigured
	}

	payment, err := s.store.FindPendingPaymentForPackage(tenantID, packageID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		payment = &models.Payment{
			ID:                uuid.New(),
			TenantID:          tenantID,
			CustomerPackageID: &pkg.ID,
			AmountCents:       pkg.PriceCents,
			Currency:          currencyOr(settings.Currency),
			Status:            models.PaymentStatusPending,
		}
		if err := s.store.CreatePayment(payment); err != nil {
			return nil, err
		}
	}

	return s.createPreference(ctx, token.AccessToken, payment, pkg.Name)
}

func (s *CheckoutService) createPreference(ctx context.Context, accessToken string, payment *models.Payment, title string) (*CheckoutResult, error) {
	rate, err := s.commission.RateFor(payment.TenantID, time.Now())
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(checkoutExpiry)
	pref, err := s.api.CreatePreference(ctx, accessToken, &provider.PreferenceRequest{
		ExternalReference:   payment.ID.String(),
		Title:               title,
		AmountCents:         payment.AmountCents,
		Currency:            payment.Currency,
		MarketplaceFeeCents: FeeCents(payment.AmountCents, rate),
		ExpiresAt:           expiresAt,
		InternalPaymentID:   payment.ID.String(),
	})
	if err != nil {
		// The pending row stays as-is; a retry reuses it.
		return nil, fmt.Errorf("create checkout intent: %w", err)
	}

	if err := s.store.UpdatePayment(payment.ID, map[string]interface{}{
		"external_id":  pref.ID,
		"checkout_url": pref.InitPoint,
		"expires_at":   expiresAt,
	}); err != nil {
		return nil, err
	}

	return &CheckoutResult{PaymentID: payment.ID, CheckoutURL: pref.InitPoint}, nil
}

// SubscribePlan creates a pending local subscription, then the provider
// preapproval, in that order.
func (s *CheckoutService) SubscribePlan(ctx context.Context, tenantID, customerID, planID uuid.UUID) (*SubscribeResult, error) {
	plan, err := s.store.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.TenantID != tenantID {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}

	customer, err := s.store.GetCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.TenantID != tenantID {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}

	token, err := s.creds.GetValidToken(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrIntegrationNotConfigured
	}

	sub := &models.Subscription{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: customerID,
		PlanID:     planID,
		Status:     models.SubscriptionStatusPending,
	}
	if err := s.store.CreateSubscription(sub); err != nil {
		return nil, err
	}

	pre, err := s.api.CreatePreapproval(ctx, token.AccessToken, &provider.PreapprovalRequest{
		ExternalReference: sub.ID.String(),
		Reason:            plan.Name,
		PayerEmail:        customer.Email,
		AmountCents:       plan.PriceCents,
		Currency:          plan.Currency,
		FrequencyMonths:   plan.PeriodMonths,
	})
	if err != nil {
		// Pending subscription row stays retryable.
		return nil, fmt.Errorf("create preapproval: %w", err)
	}

	if err := s.store.UpdateSubscription(sub.ID, map[string]interface{}{
		"provider_subscription_id": pre.ID,
	}); err != nil {
		return nil, err
	}

	return &SubscribeResult{SubscriptionID: sub.ID, CheckoutURL: pre.InitPoint}, nil
}

func currencyOr(c string) string {
	if c == "" {
		return "ARS"
	}
	return c
}
