package handlers

import (
	"context"

	"github.com/agendly/agendly-backend/internal/dto"
	"github.com/agendly/agendly-backend/internal/services"
	"github.com/agendly/agendly-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

func (h *SubscriptionHandler) Pause(c *fiber.Ctx) error {
	return h.mutate(c, h.subscriptions.Pause)
}

func (h *SubscriptionHandler) Resume(c *fiber.Ctx) error {
	return h.mutate(c, h.subscriptions.Resume)
}

func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	return h.mutate(c, h.subscriptions.Cancel)
}

func (h *SubscriptionHandler) mutate(c *fiber.Ctx, op func(ctx context.Context, tenantID, subID uuid.UUID) error) error {
	tenantID := tenant.GetTenantID(c)
	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid subscription id",
		})
	}

	if err := op(c.Context(), tenantID, subID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
