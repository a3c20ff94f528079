package utils

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/guard"
)

// RespondError переводит доменную ошибку в JSON-ответ. Внутренние ошибки
// логируются и не раскрываются клиенту.
func RespondError(c fiber.Ctx, err error) error {
	status := guard.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ Внутренняя ошибка: %v", err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// CurrentUserID извлекает ID авторизованного пользователя из контекста запроса
func CurrentUserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userID").(string)
	return uuid.Parse(raw)
}
