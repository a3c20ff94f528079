package review

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/review"
	"github.com/trademe-app/trademe-api/internal/storage"
	"github.com/trademe-app/trademe-api/internal/utils"
)

// ReviewService представляет сервис для работы с отзывами
type ReviewService struct {
	gate       *review.Gate
	jwtService *utils.JWTService
	validate   *validator.Validate
}

// NewReviewService создает новый экземпляр ReviewService
func NewReviewService(gate *review.Gate, jwtService *utils.JWTService) *ReviewService {
	return &ReviewService{
		gate:       gate,
		jwtService: jwtService,
		validate:   validator.New(),
	}
}

type createReviewRequest struct {
	TradeID     string `json:"trade_id" validate:"required,uuid4"`
	RevieweeID  string `json:"reviewee_id" validate:"required,uuid4"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Title       string `json:"title" validate:"required,max=100"`
	Comment     string `json:"comment" validate:"max=2000"`
	IsPublic    *bool  `json:"is_public"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// CreateReview создает отзыв о завершенном обмене
func (s *ReviewService) CreateReview(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req createReviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tradeID, err := uuid.Parse(req.TradeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trade ID"})
	}
	revieweeID, err := uuid.Parse(req.RevieweeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reviewee ID"})
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	created, err := s.gate.Create(c.Context(), review.CreateInput{
		TradeID:     tradeID,
		RevieweeID:  revieweeID,
		Rating:      req.Rating,
		Title:       req.Title,
		Comment:     req.Comment,
		IsPublic:    isPublic,
		IsAnonymous: req.IsAnonymous,
	}, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetReview возвращает отзыв по ID
func (s *ReviewService) GetReview(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}

	rev, err := s.gate.Get(c.Context(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(rev)
}

type updateReviewRequest struct {
	Rating      *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Comment     *string `json:"comment" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public"`
	IsAnonymous *bool   `json:"is_anonymous"`
}

// UpdateReview изменяет отзыв. Доступно только автору
func (s *ReviewService) UpdateReview(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}

	var req updateReviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	upd := storage.ReviewUpdate{
		Rating:      req.Rating,
		Title:       req.Title,
		Comment:     req.Comment,
		IsPublic:    req.IsPublic,
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.gate.Update(c.Context(), id, userID, upd); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// DeleteReview удаляет отзыв. Доступно только автору
func (s *ReviewService) DeleteReview(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid review ID"})
	}

	if err := s.gate.Delete(c.Context(), id, userID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// UserReviews возвращает публичные отзывы о пользователе
func (s *ReviewService) UserReviews(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	reviews, err := s.gate.UserReviews(c.Context(), userID, limit, offset)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews, "count": len(reviews)})
}

// TradeReviews возвращает отзывы по обмену
func (s *ReviewService) TradeReviews(c fiber.Ctx) error {
	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trade ID"})
	}

	reviews, err := s.gate.TradeReviews(c.Context(), tradeID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews, "count": len(reviews)})
}
