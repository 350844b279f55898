package handlers

import (
	"errors"
	"log/slog"

	"github.com/agendly/agendly-backend/internal/dto"
	"github.com/agendly/agendly-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	reconciler *services.ReconcilerService
}

func NewWebhookHandler(reconciler *services.ReconcilerService) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// HandleProvider is the shared provider callback endpoint. It serves every
// tenant's provider account; the reconciler discovers the owning tenant by
// re-fetching the referenced object with each stored credential, which is
// also the trust boundary for the unauthenticated payload.
func (h *WebhookHandler) HandleProvider(c *fiber.Ctx) error {
	var webhook dto.ProviderWebhook
	if err := c.BodyParser(&webhook); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}
	if webhook.Data.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing event data id",
		})
	}

	var err error
	switch webhook.Type {
	case "payment":
		err = h.reconciler.ReconcilePayment(c.Context(), webhook.Data.ID)
	case "subscription_preapproval":
		err = h.reconciler.ReconcilePreapproval(c.Context(), webhook.Data.ID)
	case "subscription_authorized_payment":
		err = h.reconciler.ReconcileSubscriptionPayment(c.Context(), webhook.Data.ID)
	default:
		// Unknown event types are acknowledged so the provider stops
		// redelivering them.
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	}

	if err != nil {
		if errors.Is(err, services.ErrUnreconcilable) {
			// Never silently dropped: money may have moved with no local
			// record, so the 404 keeps the delivery visible for follow-up.
			slog.Error("unreconcilable webhook event", "event_type", webhook.Type, "data_id", webhook.Data.ID, "error", err)
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Referenced record not found",
			})
		}
		slog.Error("webhook processing failed", "event_type", webhook.Type, "data_id", webhook.Data.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	slog.Info("webhook processed", "event_type", webhook.Type, "data_id", webhook.Data.ID)
	return c.JSON(fiber.Map{"received": true})
}
