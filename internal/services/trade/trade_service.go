package trade

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/storage"
	"github.com/trademe-app/trademe-api/internal/trade"
	"github.com/trademe-app/trademe-api/internal/utils"
)

// TradeService представляет сервис для работы с обменами
type TradeService struct {
	engine     *trade.Engine
	lifecycle  *trade.Lifecycle
	jwtService *utils.JWTService
	validate   *validator.Validate
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(engine *trade.Engine, lifecycle *trade.Lifecycle, jwtService *utils.JWTService) *TradeService {
	return &TradeService{
		engine:     engine,
		lifecycle:  lifecycle,
		jwtService: jwtService,
		validate:   validator.New(),
	}
}

type offerRequest struct {
	ItemID        string `json:"item_id" validate:"required,uuid4"`
	OfferedItemID string `json:"offered_item_id" validate:"required,uuid4"`
	Message       string `json:"message" validate:"max=1000"`
}

func (s *TradeService) parseOfferInput(c fiber.Ctx) (trade.OfferInput, error) {
	var req offerRequest
	if err := c.Bind().Body(&req); err != nil {
		return trade.OfferInput{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return trade.OfferInput{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return trade.OfferInput{}, fiber.NewError(fiber.StatusBadRequest, "Invalid item ID")
	}
	offeredItemID, err := uuid.Parse(req.OfferedItemID)
	if err != nil {
		return trade.OfferInput{}, fiber.NewError(fiber.StatusBadRequest, "Invalid offered item ID")
	}

	return trade.OfferInput{
		ItemID:        itemID,
		OfferedItemID: offeredItemID,
		Message:       req.Message,
	}, nil
}

// CreateOffer создает новое предложение обмена
func (s *TradeService) CreateOffer(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	input, err := s.parseOfferInput(c)
	if err != nil {
		return err
	}

	offer, err := s.engine.CreateOffer(c.Context(), input, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// AcceptOffer принимает предложение и создает обмен
func (s *TradeService) AcceptOffer(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	createdTrade, err := s.engine.AcceptOffer(c.Context(), offerID, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(createdTrade)
}

// RejectOffer отклоняет предложение
func (s *TradeService) RejectOffer(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	if err := s.engine.RejectOffer(c.Context(), offerID, userID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "rejected"})
}

// WithdrawOffer отзывает собственное предложение
func (s *TradeService) WithdrawOffer(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	if err := s.engine.WithdrawOffer(c.Context(), offerID, userID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "withdrawn"})
}

// CounterOffer отвечает контрпредложением на существующее предложение
func (s *TradeService) CounterOffer(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	parentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	input, err := s.parseOfferInput(c)
	if err != nil {
		return err
	}

	counter, err := s.engine.CounterOffer(c.Context(), parentID, input, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(counter)
}

// ListCounters возвращает контрпредложения по предложению
func (s *TradeService) ListCounters(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	counters, err := s.engine.ListCounters(c.Context(), offerID, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"counter_offers": counters, "count": len(counters)})
}

// ReceivedOffers возвращает предложения, адресованные текущему пользователю
func (s *TradeService) ReceivedOffers(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	offers, err := s.engine.ReceivedOffers(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"offers": offers, "count": len(offers)})
}

// MadeOffers возвращает предложения, сделанные текущим пользователем
func (s *TradeService) MadeOffers(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	offers, err := s.engine.MadeOffers(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"offers": offers, "count": len(offers)})
}

// GetTrade возвращает обмен. Доступно только участникам
func (s *TradeService) GetTrade(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trade ID"})
	}

	result, err := s.lifecycle.Get(c.Context(), tradeID, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(result)
}

// ActiveTrades возвращает незавершенные обмены текущего пользователя
func (s *TradeService) ActiveTrades(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	trades, err := s.lifecycle.ActiveTrades(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"trades": trades, "count": len(trades)})
}

// CompleteTrade завершает обмен
func (s *TradeService) CompleteTrade(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trade ID"})
	}

	if err := s.lifecycle.Complete(c.Context(), tradeID, userID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "completed"})
}

// CancelTrade отменяет обмен
func (s *TradeService) CancelTrade(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trade ID"})
	}

	if err := s.lifecycle.Cancel(c.Context(), tradeID, userID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "cancelled"})
}

type detailsRequest struct {
	MeetingLocation *string    `json:"meeting_location" validate:"omitempty,max=500"`
	MeetingTime     *time.Time `json:"meeting_time"`
	Notes           *string    `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateDetails обновляет детали встречи по обмену
func (s *TradeService) UpdateDetails(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trade ID"})
	}

	var req detailsRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	details := storage.TradeDetails{
		MeetingLocation: req.MeetingLocation,
		MeetingTime:     req.MeetingTime,
		Notes:           req.Notes,
	}
	if err := s.lifecycle.UpdateDetails(c.Context(), tradeID, userID, details); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}
