package handlers

import (
	"github.com/agendly/agendly-backend/internal/dto"
	"github.com/agendly/agendly-backend/internal/services"
	"github.com/agendly/agendly-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkout *services.CheckoutService
}

func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

func (h *CheckoutHandler) CheckoutBooking(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid booking id",
		})
	}

	result, err := h.checkout.CheckoutBooking(c.Context(), tenantID, bookingID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

func (h *CheckoutHandler) CheckoutPackage(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)
	packageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid package id",
		})
	}

	result, err := h.checkout.CheckoutPackage(c.Context(), tenantID, packageID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

func (h *CheckoutHandler) Subscribe(c *fiber.Ctx) error {
	tenantID := tenant.GetTenantID(c)

	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.CustomerID == uuid.Nil || req.PlanID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "customer_id and plan_id are required",
		})
	}

	result, err := h.checkout.SubscribePlan(c.Context(), tenantID, req.CustomerID, req.PlanID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
