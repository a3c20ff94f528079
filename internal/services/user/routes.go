package user

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trademe-app/trademe-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API пользователей
func (s *UserService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/users")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Put("/me", s.UpdateProfile)
	api.Post("/me/phone/send_code", s.SendPhoneCode)
	api.Post("/me/phone/verify", s.VerifyPhoneCode)

	api.Get("/:id", s.GetProfile)
}
