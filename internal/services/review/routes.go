package review

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trademe-app/trademe-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API отзывов
func (s *ReviewService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/reviews")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateReview)
	api.Get("/:id", s.GetReview)
	api.Put("/:id", s.UpdateReview)
	api.Delete("/:id", s.DeleteReview)

	// Выдачи по пользователю и обмену
	users := app.Group("/api/users")
	users.Use(middleware.AuthMiddleware(s.jwtService))
	users.Get("/:id/reviews", s.UserReviews)

	trades := app.Group("/api/trades")
	trades.Use(middleware.AuthMiddleware(s.jwtService))
	trades.Get("/:id/reviews", s.TradeReviews)
}
