package middleware

import (
	"github.com/agendly/agendly-backend/internal/dto"
	"github.com/agendly/agendly-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TenantMiddleware resolves the tenant UUID from the verified JWT claim or,
// for service-to-service calls, the X-Tenant-ID header, and stores it in
// locals. Runs after JWT verification; webhook and health routes are not
// tenant-scoped and never pass through it.
func TenantMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, err := tenant.TenantIDFromClaims(c); err == nil && id != uuid.Nil {
			c.Locals("tenant_id", id)
			return c.Next()
		}

		if raw := c.Get("X-Tenant-ID"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error:   true,
					Message: "Invalid X-Tenant-ID: " + raw,
				})
			}
			c.Locals("tenant_id", id)
			return c.Next()
		}

		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Tenant identification required",
		})
	}
}
