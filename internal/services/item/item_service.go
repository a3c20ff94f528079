package item

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/services/media"
	"github.com/trademe-app/trademe-api/internal/storage"
	"github.com/trademe-app/trademe-api/internal/utils"
)

// ItemService представляет сервис для работы с предметами
type ItemService struct {
	store      storage.Store
	media      *media.MediaService
	jwtService *utils.JWTService
	validate   *validator.Validate
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(store storage.Store, mediaService *media.MediaService, jwtService *utils.JWTService) *ItemService {
	return &ItemService{
		store:      store,
		media:      mediaService,
		jwtService: jwtService,
		validate:   validator.New(),
	}
}

type createItemRequest struct {
	CategoryID  string   `json:"category_id" validate:"required,uuid4"`
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Condition   string   `json:"condition" validate:"required,oneof=new like_new good fair poor"`
	ZipCode     string   `json:"zip_code" validate:"required,len=5,numeric"`
	City        string   `json:"city" validate:"required,max=100"`
	State       string   `json:"state" validate:"required,len=2,alpha"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	IsVisible   *bool    `json:"is_visible"`
}

// CreateItem создает новый предмет текущего пользователя
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req createItemRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category ID"})
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	now := time.Now()
	item := &models.Item{
		ID:          uuid.New(),
		OwnerID:     userID,
		CategoryID:  categoryID,
		Title:       req.Title,
		Description: req.Description,
		Condition:   req.Condition,
		ZipCode:     req.ZipCode,
		City:        req.City,
		State:       req.State,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      models.ItemStatusActive,
		IsVisible:   visible,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateItem(c.Context(), item); err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetItem возвращает предмет по ID
func (s *ItemService) GetItem(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	item, err := s.store.GetItem(c.Context(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}

	// Скрытый или архивный предмет виден только владельцу
	userID, _ := utils.CurrentUserID(c)
	if item.OwnerID != userID && (!item.IsVisible || item.Status != models.ItemStatusActive) {
		return utils.RespondError(c, guard.ErrNotFound)
	}
	return c.JSON(item)
}

// ListItems возвращает предметы по фильтрам из query-параметров
func (s *ItemService) ListItems(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	filter := storage.ItemFilter{
		ZipCode: c.Query("zip_code"),
		City:    c.Query("city"),
		State:   c.Query("state"),
		Search:  c.Query("search"),
		Limit:   limit,
		Offset:  offset,
	}

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category ID"})
		}
		filter.CategoryID = &categoryID
	}

	items, err := s.store.ListItems(c.Context(), filter)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// MyItems возвращает все предметы текущего пользователя, включая скрытые
func (s *ItemService) MyItems(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	items, err := s.store.ListItems(c.Context(), storage.ItemFilter{
		OwnerID: &userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

type updateItemRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Condition   *string  `json:"condition" validate:"omitempty,oneof=new like_new good fair poor"`
	ZipCode     *string  `json:"zip_code" validate:"omitempty,len=5,numeric"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	State       *string  `json:"state" validate:"omitempty,len=2,alpha"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	IsVisible   *bool    `json:"is_visible"`
}

// UpdateItem обновляет предмет. Доступно только владельцу
func (s *ItemService) UpdateItem(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req updateItemRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	item, err := s.store.GetItem(c.Context(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if item.OwnerID != userID {
		return utils.RespondError(c, guard.ErrUnauthorized)
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.ZipCode != nil {
		item.ZipCode = *req.ZipCode
	}
	if req.City != nil {
		item.City = *req.City
	}
	if req.State != nil {
		item.State = *req.State
	}
	if req.Latitude != nil {
		item.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		item.Longitude = req.Longitude
	}
	if req.IsVisible != nil {
		item.IsVisible = *req.IsVisible
	}

	if err := s.store.UpdateItem(c.Context(), item); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(item)
}

// ArchiveItem переводит предмет в статус archived. Доступно только владельцу
func (s *ItemService) ArchiveItem(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	item, err := s.store.GetItem(c.Context(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if item.OwnerID != userID {
		return utils.RespondError(c, guard.ErrUnauthorized)
	}

	if err := s.store.SetItemStatus(c.Context(), id, models.ItemStatusArchived); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "archived"})
}

// ListCategories возвращает список категорий предметов
func (s *ItemService) ListCategories(c fiber.Ctx) error {
	categories, err := s.store.ListCategories(c.Context())
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}
