package routes

import (
	"time"

	"github.com/agendly/agendly-backend/internal/config"
	"github.com/agendly/agendly-backend/internal/handlers"
	"github.com/agendly/agendly-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	checkoutHandler *handlers.CheckoutHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no tenant required)
	api.Get("/health", healthHandler.Check)

	// Webhooks: shared endpoint, no JWT. Higher limit because the provider
	// batches redeliveries.
	webhooks := api.Group("/webhooks")
	webhooks.Use(limiter.New(limiter.Config{
		Max:               300,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	webhooks.Post("/mercadopago", webhookHandler.HandleProvider)

	// Checkout + subscription management (JWT + tenant scoping)
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.TenantMiddleware())

	protected.Post("/checkout/bookings/:id", checkoutHandler.CheckoutBooking)
	protected.Post("/checkout/packages/:id", checkoutHandler.CheckoutPackage)
	protected.Post("/subscriptions", checkoutHandler.Subscribe)

	protected.Put("/subscriptions/:id/pause", subscriptionHandler.Pause)
	protected.Put("/subscriptions/:id/resume", subscriptionHandler.Resume)
	protected.Put("/subscriptions/:id/cancel", subscriptionHandler.Cancel)
}
