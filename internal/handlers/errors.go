package handlers

import (
	"errors"
	"log/slog"

	"github.com/agendly/agendly-backend/internal/dto"
	"github.com/agendly/agendly-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// serviceError maps service-layer sentinel errors onto HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Record not found",
		})
	case errors.Is(err, services.ErrIntegrationNotConfigured):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Payment integration is not configured",
		})
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}
