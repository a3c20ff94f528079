package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trademe-app/trademe-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/google", s.GoogleAuthHandler)

	// Защищенные маршруты
	protected := app.Group("/api/auth")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Get("/me", s.MeHandler)
}
