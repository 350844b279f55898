package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/provider"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/google/uuid"
)

// ReconcilerService consumes provider webhooks. Deliveries are at-least-once
// and arbitrarily ordered, so every write here is either an unconditional
// status overwrite or guarded by a genuine state transition, a content-based
// existence check, or a dedup key.
type ReconcilerService struct {
	store      repository.Store
	creds      *CredentialService
	commission *CommissionService
	notifier   *NotifierService
	api        provider.API
}

func NewReconcilerService(store repository.Store, creds *CredentialService, commission *CommissionService, notifier *NotifierService, api provider.API) *ReconcilerService {
	return &ReconcilerService{store: store, creds: creds, commission: commission, notifier: notifier, api: api}
}

// ReconcilePayment re-fetches the authoritative payment from the provider and
// syncs the local row. The event carries no tenant context, so each tenant's
// valid token probes the provider until one fetch succeeds.
func (s *ReconcilerService) ReconcilePayment(ctx context.Context, providerPaymentID string) error {
	remote, err := s.fetchPayment(ctx, providerPaymentID)
	if err != nil {
		return err
	}
	if remote == nil {
		return fmt.Errorf("provider payment %s: %w", providerPaymentID, ErrUnreconcilable)
	}

	payment, err := s.resolveLocalPayment(remote)
	if err != nil {
		return err
	}
	if payment == nil {
		return fmt.Errorf("provider payment %s has no local payment row: %w", providerPaymentID, ErrUnreconcilable)
	}

	newStatus := provider.MapPaymentStatus(remote.Status)
	previous := payment.Status

	// Writing the same status twice is a no-op in effect, so this persist is
	// unconditional.
	if err := s.store.UpdatePayment(payment.ID, map[string]interface{}{
		"status":      newStatus,
		"external_id": remote.ID,
	}); err != nil {
		return err
	}

	// Side effects fire only on the genuine transition into paid; redelivered
	// "already paid" events must not re-confirm or double-post.
	if previous != models.PaymentStatusPaid && newStatus == models.PaymentStatusPaid {
		return s.applyPaidSideEffects(ctx, payment)
	}
	return nil
}

func (s *ReconcilerService) fetchPayment(ctx context.Context, id string) (*provider.Payment, error) {
	tokens, err := s.creds.ValidTokens(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		remote, err := s.api.GetPayment(ctx, tokens[i].AccessToken, id)
		if err == nil {
			return remote, nil
		}
		if !errors.Is(err, provider.ErrNotFound) {
			slog.Warn("payment probe failed", "tenant_id", tokens[i].TenantID, "provider_payment_id", id, "error", err)
		}
	}
	return nil, nil
}

// resolveLocalPayment prefers the internal id carried in provider metadata,
// then the external reference, then a booking-id lookup for legacy events.
func (s *ReconcilerService) resolveLocalPayment(remote *provider.Payment) (*models.Payment, error) {
	if raw, ok := remote.Metadata["internal_payment_id"].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			payment, err := s.store.GetPayment(id)
			if err != nil || payment != nil {
				return payment, err
			}
		}
	}

	if remote.ExternalReference != "" {
		id, err := uuid.Parse(remote.ExternalReference)
		if err != nil {
			return nil, nil
		}
		payment, err := s.store.GetPayment(id)
		if err != nil || payment != nil {
			return payment, err
		}
		// Legacy events carried the booking id in the reference field.
		return s.store.FindPaymentByBooking(id)
	}
	return nil, nil
}

func (s *ReconcilerService) applyPaidSideEffects(ctx context.Context, payment *models.Payment) error {
	now := time.Now()

	if payment.BookingID != nil {
		booking, err := s.store.GetBooking(*payment.BookingID)
		if err != nil {
			return err
		}
		if booking != nil {
			if booking.Status == models.BookingStatusExpired {
				conflict, err := s.store.HasBookingConflict(booking)
				if err != nil {
					return err
				}
				if conflict {
					// The slot was re-sold while payment was in flight. The
					// business cannot serve both, so this money must go back;
					// an operator resolves it manually.
					slog.Warn("late payment on expired booking with slot conflict",
						"tenant_id", payment.TenantID, "payment_id", payment.ID, "booking_id", booking.ID)
					return s.store.UpdatePayment(payment.ID, map[string]interface{}{
						"status": models.PaymentStatusRefundRequired,
					})
				}
			}

			if err := s.store.UpdateBookingStatus(booking.ID, models.BookingStatusConfirmed); err != nil {
				return err
			}

			s.notifyBookingConfirmed(ctx, payment, booking)

			refToken := "booking:" + booking.ID.String()
			exists, err := s.store.HasCashEntryWithRef(payment.TenantID, "booking", refToken)
			if err != nil {
				return err
			}
			if !exists {
				if err := s.store.CreateCashEntry(&models.CashEntry{
					TenantID:    payment.TenantID,
					AmountCents: payment.AmountCents,
					Kind:        models.CashEntryKindIncome,
					Source:      "booking",
					Notes:       "Collected payment for " + refToken,
					OccurredAt:  now,
				}); err != nil {
					return err
				}
			}
		}
	}

	if payment.CustomerPackageID != nil {
		if err := s.store.UpdateCustomerPackage(*payment.CustomerPackageID, map[string]interface{}{
			"payment_status": models.PackagePaymentConfirmed,
		}); err != nil {
			return err
		}

		refToken := "package:" + payment.CustomerPackageID.String()
		exists, err := s.store.HasCashEntryWithRef(payment.TenantID, "package", refToken)
		if err != nil {
			return err
		}
		if !exists {
			if err := s.store.CreateCashEntry(&models.CashEntry{
				TenantID:    payment.TenantID,
				AmountCents: payment.AmountCents,
				Kind:        models.CashEntryKindIncome,
				Source:      "package",
				Notes:       "Collected payment for " + refToken,
				OccurredAt:  now,
			}); err != nil {
				return err
			}
		}
	}

	if _, err := s.commission.RecordFee(payment.TenantID, payment.ID, payment.AmountCents, now); err != nil {
		return err
	}
	return nil
}

func (s *ReconcilerService) notifyBookingConfirmed(ctx context.Context, payment *models.Payment, booking *models.Booking) {
	customer, err := s.store.GetCustomer(booking.CustomerID)
	if err != nil || customer == nil {
		return
	}
	message := fmt.Sprintf("Your booking for %s is confirmed. See you then!",
		booking.StartsAt.Format("Mon 02 Jan 15:04"))
	key := DedupKey("payment_confirmed", payment.ID, "")
	s.notifier.Send(ctx, payment.TenantID, customer.Phone, message, "payment_confirmed", key, NotificationRefs{
		CustomerID: &customer.ID,
		BookingID:  &booking.ID,
	})
}

// ReconcilePreapproval syncs a subscription's provider-side authorization
// state (subscription_preapproval events).
func (s *ReconcilerService) ReconcilePreapproval(ctx context.Context, preapprovalID string) error {
	tokens, err := s.creds.ValidTokens(ctx)
	if err != nil {
		return err
	}

	var remote *provider.Preapproval
	for i := range tokens {
		p, err := s.api.GetPreapproval(ctx, tokens[i].AccessToken, preapprovalID)
		if err == nil {
			remote = p
			break
		}
		if !errors.Is(err, provider.ErrNotFound) {
			slog.Warn("preapproval probe failed", "tenant_id", tokens[i].TenantID, "preapproval_id", preapprovalID, "error", err)
		}
	}
	if remote == nil {
		return fmt.Errorf("preapproval %s: %w", preapprovalID, ErrUnreconcilable)
	}

	sub, err := s.resolveSubscription(remote.ID, remote.ExternalReference)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("preapproval %s has no local subscription: %w", preapprovalID, ErrUnreconcilable)
	}

	newStatus := provider.MapPreapprovalStatus(remote.Status)
	previous := sub.Status

	if previous != models.SubscriptionStatusActive && newStatus == models.SubscriptionStatusActive {
		return s.activateSubscription(ctx, sub, remote.ID)
	}

	return s.store.UpdateSubscription(sub.ID, map[string]interface{}{
		"status":                   newStatus,
		"provider_subscription_id": remote.ID,
	})
}

func (s *ReconcilerService) resolveSubscription(providerID, externalRef string) (*models.Subscription, error) {
	sub, err := s.store.FindSubscriptionByProviderID(providerID)
	if err != nil || sub != nil {
		return sub, err
	}
	if id, err := uuid.Parse(externalRef); err == nil {
		return s.store.GetSubscription(id)
	}
	return nil, nil
}

// activateSubscription starts a fresh billing period and seeds the
// per-service usage rows. Seeding is an upsert, so re-activation is safe.
func (s *ReconcilerService) activateSubscription(ctx context.Context, sub *models.Subscription, providerID string) error {
	plan, err := s.store.GetPlan(sub.PlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("plan %s: %w", sub.PlanID, ErrNotFound)
	}

	start := time.Now()
	end := start.AddDate(0, periodMonths(plan), 0)

	if err := s.store.UpdateSubscription(sub.ID, map[string]interface{}{
		"status":                   models.SubscriptionStatusActive,
		"provider_subscription_id": providerID,
		"current_period_start":     start,
		"current_period_end":       end,
		"failed_at":                nil,
	}); err != nil {
		return err
	}

	if err := s.seedUsage(sub.ID, plan.ID, start, end); err != nil {
		return err
	}

	s.notifySubscription(ctx, sub, "subscription_activated",
		"Your subscription is active. Welcome aboard!",
		DedupKey("subscription_activated", sub.ID, start.Format("2006-01-02")))
	return nil
}

func (s *ReconcilerService) seedUsage(subscriptionID, planID uuid.UUID, start, end time.Time) error {
	items, err := s.store.ListPlanItems(planID)
	if err != nil {
		return err
	}
	for i := range items {
		if err := s.store.UpsertUsage(&models.SubscriptionUsage{
			SubscriptionID: subscriptionID,
			ServiceID:      items[i].ServiceID,
			PeriodStart:    start,
			PeriodEnd:      end,
			SessionsLimit:  items[i].SessionsLimit,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ReconcileSubscriptionPayment handles one recurring charge
// (subscription_authorized_payment events): a successful charge renews the
// period; a rejected one opens a failure episode.
func (s *ReconcilerService) ReconcileSubscriptionPayment(ctx context.Context, authorizedPaymentID string) error {
	tokens, err := s.creds.ValidTokens(ctx)
	if err != nil {
		return err
	}

	var remote *provider.AuthorizedPayment
	for i := range tokens {
		ap, err := s.api.GetAuthorizedPayment(ctx, tokens[i].AccessToken, authorizedPaymentID)
		if err == nil {
			remote = ap
			break
		}
		if !errors.Is(err, provider.ErrNotFound) {
			slog.Warn("authorized payment probe failed", "tenant_id", tokens[i].TenantID, "authorized_payment_id", authorizedPaymentID, "error", err)
		}
	}
	if remote == nil {
		return fmt.Errorf("authorized payment %s: %w", authorizedPaymentID, ErrUnreconcilable)
	}

	sub, err := s.store.FindSubscriptionByProviderID(remote.PreapprovalID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("authorized payment %s has no local subscription: %w", authorizedPaymentID, ErrUnreconcilable)
	}

	switch provider.MapPaymentStatus(remote.Status) {
	case models.PaymentStatusPaid:
		return s.renewSubscription(ctx, sub, remote)
	case models.PaymentStatusFailed:
		return s.failSubscriptionPayment(ctx, sub)
	default:
		// Pending or cancelled charges change nothing until the provider
		// settles them one way or the other.
		return nil
	}
}

func (s *ReconcilerService) renewSubscription(ctx context.Context, sub *models.Subscription, remote *provider.AuthorizedPayment) error {
	plan, err := s.store.GetPlan(sub.PlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("plan %s: %w", sub.PlanID, ErrNotFound)
	}

	// The ledger row doubles as the applied-charge marker: its presence means
	// this exact charge already renewed the period, so a redelivery is a no-op.
	refToken := fmt.Sprintf("subscription:%s:charge:%s", sub.ID, remote.ID)
	applied, err := s.store.HasCashEntryWithRef(sub.TenantID, "subscription", refToken)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	now := time.Now()
	start := now
	// A charge at the cycle boundary extends the running period instead of
	// opening an overlapping one.
	if !sub.CurrentPeriodEnd.IsZero() && sub.CurrentPeriodEnd.After(now) {
		start = sub.CurrentPeriodEnd
	}
	end := start.AddDate(0, periodMonths(plan), 0)

	if err := s.store.UpdateSubscription(sub.ID, map[string]interface{}{
		"status":               models.SubscriptionStatusActive,
		"current_period_start": start,
		"current_period_end":   end,
		"failed_at":            nil,
	}); err != nil {
		return err
	}

	if err := s.seedUsage(sub.ID, plan.ID, start, end); err != nil {
		return err
	}

	amountCents := int64(remote.TransactionAmount * 100)
	if amountCents <= 0 {
		amountCents = plan.PriceCents
	}
	if err := s.store.CreateCashEntry(&models.CashEntry{
		TenantID:    sub.TenantID,
		AmountCents: amountCents,
		Kind:        models.CashEntryKindIncome,
		Source:      "subscription",
		Notes:       "Subscription charge " + refToken,
		OccurredAt:  now,
	}); err != nil {
		return err
	}

	s.notifySubscription(ctx, sub, "subscription_renewed",
		"Your subscription payment was received. Thanks!",
		DedupKey("subscription_renewed", sub.ID, start.Format("2006-01-02")))
	return nil
}

// failSubscriptionPayment opens a failure episode: failed_at is set exactly
// once and only cleared by a successful renewal. Only live subscriptions can
// enter past_due; a late or redelivered failure event must not pull a
// cancelled or suspended subscription back into the dunning chain.
func (s *ReconcilerService) failSubscriptionPayment(ctx context.Context, sub *models.Subscription) error {
	switch sub.Status {
	case models.SubscriptionStatusActive, models.SubscriptionStatusPending, models.SubscriptionStatusPastDue:
	default:
		slog.Info("ignoring payment failure for non-live subscription",
			"subscription_id", sub.ID, "status", sub.Status)
		return nil
	}

	failedAt := sub.FailedAt
	if failedAt == nil {
		now := time.Now()
		failedAt = &now
	}

	if err := s.store.UpdateSubscription(sub.ID, map[string]interface{}{
		"status":    models.SubscriptionStatusPastDue,
		"failed_at": *failedAt,
	}); err != nil {
		return err
	}

	s.notifySubscription(ctx, sub, "subscription_payment_failed",
		"We could not process your subscription payment. Please update your payment method.",
		DedupKey("subscription_payment_failed", sub.ID, failedAt.Format("2006-01-02")))
	return nil
}

func (s *ReconcilerService) notifySubscription(ctx context.Context, sub *models.Subscription, eventType, message, dedupKey string) {
	customer, err := s.store.GetCustomer(sub.CustomerID)
	if err != nil || customer == nil {
		return
	}
	s.notifier.Send(ctx, sub.TenantID, customer.Phone, message, eventType, dedupKey, NotificationRefs{
		CustomerID:     &customer.ID,
		SubscriptionID: &sub.ID,
	})
}

func periodMonths(plan *models.Plan) int {
	if plan.PeriodMonths <= 0 {
		return 1
	}
	return plan.PeriodMonths
}
