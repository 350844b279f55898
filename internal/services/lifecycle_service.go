package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/repository"
)

// Warnings go out when a past-due subscription is this close to suspension.
const warningWindowHours = 6

// LifecycleService is the scheduled sweep that ages unpaid subscriptions
// through the grace period into suspension and emits cycle-boundary
// reminders. Every sweep is safe to re-run at any frequency: one message per
// (subscription, episode) or (subscription, period end, offset) is enforced
// by the notification dedup keys.
type LifecycleService struct {
	store    repository.Store
	notifier *NotifierService
	settings SettingsSource
}

func NewLifecycleService(store repository.Store, notifier *NotifierService, settings SettingsSource) *LifecycleService {
	return &LifecycleService{store: store, notifier: notifier, settings: settings}
}

// SweepOverdue evaluates every past-due subscription against its tenant's
// grace period: suspend when the grace has fully elapsed, warn once inside
// the final window before suspension.
func (s *LifecycleService) SweepOverdue(ctx context.Context, now time.Time) error {
	subs, err := s.store.ListSubscriptionsByStatus(models.SubscriptionStatusPastDue)
	if err != nil {
		return err
	}

	for i := range subs {
		sub := &subs[i]
		if sub.FailedAt == nil {
			continue
		}
		if err := s.sweepOne(ctx, sub, now); err != nil {
			slog.Error("overdue sweep failed for subscription", "subscription_id", sub.ID, "error", err)
		}
	}
	return nil
}

func (s *LifecycleService) sweepOne(ctx context.Context, sub *models.Subscription, now time.Time) error {
	settings, err := s.settings.Get(sub.TenantID)
	if err != nil {
		return err
	}
	grace := float64(graceHours(settings))
	elapsed := now.Sub(*sub.FailedAt).Hours()
	anchor := sub.FailedAt.Format("2006-01-02")

	if elapsed >= grace {
		// failed_at stays set: it anchors the dedup key and marks the
		// episode until a successful renewal clears it.
		if err := s.store.UpdateSubscription(sub.ID, map[string]interface{}{
			"status": models.SubscriptionStatusSuspended,
		}); err != nil {
			return err
		}
		s.notifyLifecycle(ctx, sub, "subscription_suspended",
			"Your subscription has been suspended due to a missed payment. Contact us to reactivate it.",
			DedupKey("subscription_suspended", sub.ID, anchor))
		return nil
	}

	remaining := grace - elapsed
	if remaining > 0 && remaining <= warningWindowHours {
		s.notifyLifecycle(ctx, sub, "subscription_warning",
			fmt.Sprintf("Your subscription will be suspended in about %d hours unless payment is received.", int(remaining)),
			DedupKey("subscription_warning", sub.ID, anchor))
	}
	return nil
}

// SweepRenewalReminders sends one reminder per configured offset per cycle,
// however often the sweep runs.
func (s *LifecycleService) SweepRenewalReminders(ctx context.Context, now time.Time) error {
	subs, err := s.store.ListSubscriptionsByStatus(models.SubscriptionStatusActive)
	if err != nil {
		return err
	}

	for i := range subs {
		sub := &subs[i]
		if sub.CurrentPeriodEnd.IsZero() {
			continue
		}

		settings, err := s.settings.Get(sub.TenantID)
		if err != nil {
			slog.Error("settings lookup failed", "tenant_id", sub.TenantID, "error", err)
			continue
		}

		days := daysUntil(sub.CurrentPeriodEnd, now)
		if !containsInt(reminderOffsets(settings), days) {
			continue
		}

		anchor := fmt.Sprintf("%s_%d", sub.CurrentPeriodEnd.Format("2006-01-02"), days)
		s.notifyLifecycle(ctx, sub, "subscription_renewal",
			renewalMessage(days),
			DedupKey("subscription_renewal", sub.ID, anchor))
	}
	return nil
}

func (s *LifecycleService) notifyLifecycle(ctx context.Context, sub *models.Subscription, eventType, message, dedupKey string) {
	customer, err := s.store.GetCustomer(sub.CustomerID)
	if err != nil || customer == nil {
		return
	}
	s.notifier.Send(ctx, sub.TenantID, customer.Phone, message, eventType, dedupKey, NotificationRefs{
		CustomerID:     &customer.ID,
		SubscriptionID: &sub.ID,
	})
}

func renewalMessage(days int) string {
	switch days {
	case 0:
		return "Your subscription renews today."
	case 1:
		return "Your subscription renews tomorrow."
	default:
		return fmt.Sprintf("Your subscription renews in %d days.", days)
	}
}

// daysUntil counts whole calendar days from now to t in UTC.
func daysUntil(t, now time.Time) int {
	endDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(endDay.Sub(nowDay) / (24 * time.Hour))
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
