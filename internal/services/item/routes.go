package item

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trademe-app/trademe-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API предметов
func (s *ItemService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/items")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateItem)
	api.Get("/", s.ListItems)
	api.Get("/my", s.MyItems)
	api.Get("/upload_params", s.media.GenerateUploadParams)
	api.Get("/:id", s.GetItem)
	api.Put("/:id", s.UpdateItem)
	api.Delete("/:id", s.ArchiveItem)

	api.Post("/:id/photos", s.AddPhoto)
	api.Delete("/:id/photos/:photoID", s.DeletePhoto)

	categories := app.Group("/api/categories")
	categories.Use(middleware.AuthMiddleware(s.jwtService))
	categories.Get("/", s.ListCategories)
}
