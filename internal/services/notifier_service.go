package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agendly/agendly-backend/internal/models"
	"github.com/agendly/agendly-backend/internal/relay"
	"github.com/agendly/agendly-backend/internal/repository"
	"github.com/google/uuid"
)

// NotificationRefs links a log entry back to the entities that triggered it.
type NotificationRefs struct {
	CustomerID     *uuid.UUID
	SubscriptionID *uuid.UUID
	BookingID      *uuid.UUID
}

// NotifierService sends WhatsApp messages through the relay with at-most-once
// semantics per dedup key. It never returns an error: notification failures
// must not abort the payment or subscription transition that triggered them.
type NotifierService struct {
	store repository.Store
	relay relay.Sender
}

func NewNotifierService(store repository.Store, sender relay.Sender) *NotifierService {
	return &NotifierService{store: store, relay: sender}
}

// DedupKey builds the canonical `{eventType}_{entityID}_{temporalAnchor}`
// key. Identical triggers (a redelivered webhook, a re-run sweep) produce an
// identical key and are suppressed on the second attempt.
func DedupKey(eventType string, entityID uuid.UUID, anchor string) string {
	if anchor == "" {
		return fmt.Sprintf("%s_%s", eventType, entityID)
	}
	return fmt.Sprintf("%s_%s_%s", eventType, entityID, anchor)
}

// Send dispatches one message. An empty dedupKey means always-send. Returns
// whether the dispatch itself reported success; a skipped send (dedup hit,
// missing channel, unconfigured relay) returns false.
func (s *NotifierService) Send(ctx context.Context, tenantID uuid.UUID, phone, message, eventType, dedupKey string, refs NotificationRefs) bool {
	if dedupKey != "" {
		exists, err := s.store.NotificationExists(dedupKey)
		if err != nil {
			slog.Error("notification dedup check failed", "tenant_id", tenantID, "dedup_key", dedupKey, "error", err)
			return false
		}
		if exists {
			return false
		}
	}

	channel, err := s.store.GetActiveChannel(tenantID)
	if err != nil {
		slog.Error("messaging channel lookup failed", "tenant_id", tenantID, "error", err)
		return false
	}
	if channel == nil {
		return false
	}
	if s.relay == nil || !s.relay.Configured() {
		return false
	}

	normalized := relay.NormalizePhone(phone)
	if normalized == "" {
		return false
	}

	sendErr := s.relay.SendText(ctx, channel.InstanceID, channel.Token, normalized, message)

	// The log row is written regardless of the dispatch outcome so that a
	// retried trigger does not double-send after a transient relay failure.
	if dedupKey != "" {
		entry := &models.NotificationLog{
			TenantID:       tenantID,
			EventType:      eventType,
			DedupKey:       dedupKey,
			CustomerID:     refs.CustomerID,
			SubscriptionID: refs.SubscriptionID,
			BookingID:      refs.BookingID,
			SentAt:         time.Now(),
		}
		if err := s.store.UpsertNotificationLog(entry); err != nil {
			slog.Error("failed to record notification log", "tenant_id", tenantID, "dedup_key", dedupKey, "error", err)
		}
	}

	if sendErr != nil {
		slog.Warn("notification dispatch failed", "tenant_id", tenantID, "event_type", eventType, "error", sendErr)
		return false
	}
	return true
}
