package item

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/utils"
)

type addPhotoRequest struct {
	URL        string `json:"url" validate:"required,url"`
	PublicID   string `json:"public_id" validate:"required"`
	IsPrimary  bool   `json:"is_primary"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

// AddPhoto привязывает загруженную в Cloudinary фотографию к предмету.
// Сама загрузка идет напрямую из клиента по подписанным параметрам.
func (s *ItemService) AddPhoto(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req addPhotoRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	item, err := s.store.GetItem(c.Context(), itemID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if item.OwnerID != userID {
		return utils.RespondError(c, guard.ErrUnauthorized)
	}

	photo := &models.ItemPhoto{
		ID:         uuid.New(),
		ItemID:     itemID,
		URL:        req.URL,
		PublicID:   req.PublicID,
		IsPrimary:  req.IsPrimary,
		OrderIndex: req.OrderIndex,
		CreatedAt:  time.Now(),
	}

	if err := s.store.AddItemPhoto(c.Context(), photo); err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

// DeletePhoto удаляет фотографию предмета и файл в Cloudinary
func (s *ItemService) DeletePhoto(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	photoID, err := uuid.Parse(c.Params("photoID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid photo ID"})
	}

	item, err := s.store.GetItem(c.Context(), itemID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if item.OwnerID != userID {
		return utils.RespondError(c, guard.ErrUnauthorized)
	}

	photo, err := s.store.GetItemPhoto(c.Context(), photoID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if photo.ItemID != itemID {
		return utils.RespondError(c, guard.ErrNotFound)
	}

	if err := s.store.DeleteItemPhoto(c.Context(), photoID); err != nil {
		return utils.RespondError(c, err)
	}

	// Файл в Cloudinary чистим после удаления записи. Ошибка здесь не
	// откатывает операцию, осиротевший файл доберет фоновая чистка.
	if err := s.media.Destroy(c.Context(), photo.PublicID); err != nil {
		log.Printf("⚠️ Не удалось удалить файл %s из Cloudinary: %v", photo.PublicID, err)
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
