package trade

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trademe-app/trademe-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов
func (s *TradeService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/trades")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Предложения обмена
	api.Post("/offers", s.CreateOffer)
	api.Get("/offers/received", s.ReceivedOffers)
	api.Get("/offers/made", s.MadeOffers)
	api.Post("/offers/:id/accept", s.AcceptOffer)
	api.Post("/offers/:id/reject", s.RejectOffer)
	api.Post("/offers/:id/withdraw", s.WithdrawOffer)
	api.Post("/offers/:id/counter", s.CounterOffer)
	api.Get("/offers/:id/counters", s.ListCounters)

	// Жизненный цикл обменов
	api.Get("/", s.ActiveTrades)
	api.Get("/:id", s.GetTrade)
	api.Post("/:id/complete", s.CompleteTrade)
	api.Post("/:id/cancel", s.CancelTrade)
	api.Put("/:id/details", s.UpdateDetails)
}
