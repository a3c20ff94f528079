package subscription

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trademe-app/trademe-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API подписок
func (s *SubscriptionService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/subscriptions")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.Subscribe)
	api.Get("/me", s.MySubscription)
	api.Delete("/me", s.Unsubscribe)
}
