package tenant

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GetTenantID extracts the tenant UUID from Fiber context locals.
func GetTenantID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("tenant_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// TenantIDFromClaims reads the tenant_id claim from a verified JWT.
func TenantIDFromClaims(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	raw, ok := claims["tenant_id"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing tenant_id claim")
	}

	return uuid.Parse(raw)
}
