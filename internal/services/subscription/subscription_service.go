package subscription

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/payments"
	"github.com/trademe-app/trademe-api/internal/storage"
	"github.com/trademe-app/trademe-api/internal/utils"
)

// Стоимость подписки Trade Me Premium
const (
	premiumAmountCents = 499
	premiumCurrency    = "USD"
	providerName       = "paystack"
)

// SubscriptionService представляет сервис для работы с подписками
type SubscriptionService struct {
	store      storage.Store
	provider   payments.Provider
	jwtService *utils.JWTService
}

// NewSubscriptionService создает новый экземпляр SubscriptionService
func NewSubscriptionService(store storage.Store, provider payments.Provider, jwtService *utils.JWTService) *SubscriptionService {
	return &SubscriptionService{
		store:      store,
		provider:   provider,
		jwtService: jwtService,
	}
}

// Subscribe оформляет подписку Premium для текущего пользователя
func (s *SubscriptionService) Subscribe(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := s.store.GetUser(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	// У пользователя может быть не более одной активной подписки
	existing, err := s.store.GetSubscriptionByUser(c.Context(), userID)
	if err != nil && !errors.Is(err, guard.ErrNotFound) {
		return utils.RespondError(c, err)
	}
	if existing != nil && existing.Status == models.SubscriptionStatusActive {
		return utils.RespondError(c, fmt.Errorf("%w: subscription already active", guard.ErrInvalidState))
	}

	result, err := s.provider.CreateSubscription(c.Context(), payments.SubscriptionRequest{
		CustomerEmail: user.Email,
		Amount:        premiumAmountCents,
		Currency:      premiumCurrency,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	now := time.Now()
	sub := &models.Subscription{
		ID:                     uuid.New(),
		UserID:                 userID,
		Status:                 models.SubscriptionStatusActive,
		Provider:               providerName,
		ProviderSubscriptionID: result.SubscriptionID,
		ProviderCustomerID:     result.CustomerID,
		Amount:                 float64(premiumAmountCents) / 100,
		Currency:               premiumCurrency,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.store.CreateSubscription(c.Context(), sub); err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// MySubscription возвращает подписку текущего пользователя
func (s *SubscriptionService) MySubscription(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	sub, err := s.store.GetSubscriptionByUser(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(sub)
}

// Unsubscribe отменяет подписку текущего пользователя
func (s *SubscriptionService) Unsubscribe(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	sub, err := s.store.GetSubscriptionByUser(c.Context(), userID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if sub.Status != models.SubscriptionStatusActive {
		return utils.RespondError(c, fmt.Errorf("%w: subscription is not active", guard.ErrInvalidState))
	}

	if err := s.provider.CancelSubscription(c.Context(), sub.ProviderSubscriptionID); err != nil {
		return utils.RespondError(c, err)
	}

	if err := s.store.UpdateSubscriptionStatus(c.Context(), sub.ID, models.SubscriptionStatusCancelled); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "cancelled"})
}
