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

// SubscriptionService applies operator-initiated lifecycle changes. The
// provider is mutated first; local state only follows a successful remote
// change, so the two never diverge on our side.
type SubscriptionService struct {
	store repository.Store
	creds *CredentialService
	api   provider.API
}

func NewSubscriptionService(store repository.Store, creds *CredentialService, api provider.API) *SubscriptionService {
	return &SubscriptionService{store: store, creds: creds, api: api}
}

func (s *SubscriptionService) Pause(ctx context.Context, tenantID, subscriptionID uuid.UUID) error {
	sub, err := s.ownedSubscription(tenantID, subscriptionID)
	if err != nil {
		return err
	}

	if err := s.updateRemote(ctx, tenantID, sub, "paused", false); err != nil {
		return err
	}
	return s.store.UpdateSubscription(sub.ID, map[string]interface{}{
		"status": models.SubscriptionStatusPaused,
	})
}

// Resume re-authorizes the preapproval and starts a fresh billing period,
// re-seeding the per-service usage rows. The usage upsert keys on
// (subscription, service, period_start), so re-running a resume is safe.
func (s *SubscriptionService) Resume(ctx context.Context, tenantID, subscriptionID uuid.UUID) error {
	sub, err := s.ownedSubscription(tenantID, subscriptionID)
	if err != nil {
		return err
	}

	if err := s.updateRemote(ctx, tenantID, sub, "authorized", false); err != nil {
		return err
	}

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
		"status":               models.SubscriptionStatusActive,
		"current_period_start": start,
		"current_period_end":   end,
		"failed_at":            nil,
	}); err != nil {
		return err
	}

	items, err := s.store.ListPlanItems(plan.ID)
	if err != nil {
		return err
	}
	for i := range items {
		if err := s.store.UpsertUsage(&models.SubscriptionUsage{
			SubscriptionID: sub.ID,
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

// Cancel tolerates an already-gone remote object: cancelling a cancelled
// subscription is success, and local state still moves to cancelled.
func (s *SubscriptionService) Cancel(ctx context.Context, tenantID, subscriptionID uuid.UUID) error {
	sub, err := s.ownedSubscription(tenantID, subscriptionID)
	if err != nil {
		return err
	}

	if err := s.updateRemote(ctx, tenantID, sub, "cancelled", true); err != nil {
		return err
	}
	return s.store.UpdateSubscription(sub.ID, map[string]interface{}{
		"status": models.SubscriptionStatusCancelled,
	})
}

func (s *SubscriptionService) ownedSubscription(tenantID, subscriptionID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.TenantID != tenantID {
		return nil, fmt.Errorf("subscription %s: %w", subscriptionID, ErrNotFound)
	}
	return sub, nil
}

func (s *SubscriptionService) updateRemote(ctx context.Context, tenantID uuid.UUID, sub *models.Subscription, status string, tolerateGone bool) error {
	if sub.ProviderSubscriptionID == nil || *sub.ProviderSubscriptionID == "" {
		// Never left the pending/local stage; nothing remote to mutate.
		return nil
	}

	token, err := s.creds.GetValidToken(ctx, tenantID)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrIntegrationNotConfigured
	}

	_, err = s.api.UpdatePreapproval(ctx, token.AccessToken, *sub.ProviderSubscriptionID, status)
	if err != nil {
		if tolerateGone && errors.Is(err, provider.ErrNotFound) {
			slog.Info("remote subscription already gone, proceeding locally",
				"tenant_id", tenantID, "subscription_id", sub.ID)
			return nil
		}
		return fmt.Errorf("update remote subscription: %w", err)
	}
	return nil
}
