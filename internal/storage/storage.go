// Package storage определяет контракт хранилища сущностей и его реализации.
// Сервисы получают Store при создании (dependency injection), что позволяет
// подменять хранилище в тестах.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/models"
)

// ItemFilter задает фильтры выборки предметов
type ItemFilter struct {
	CategoryID *uuid.UUID
	OwnerID    *uuid.UUID
	ZipCode    string
	City       string
	State      string
	Search     string
	Limit      int
	Offset     int
}

// TradeDetails содержит обновляемые детали встречи по обмену.
// Nil-поля не изменяются.
type TradeDetails struct {
	MeetingLocation *string
	MeetingTime     *time.Time
	Notes           *string
}

// ReviewUpdate содержит обновляемые поля отзыва. Nil-поля не изменяются.
type ReviewUpdate struct {
	Rating      *int
	Title       *string
	Comment     *string
	IsPublic    *bool
	IsAnonymous *bool
}

// Tx описывает операции хранилища. Методы чтения *ForUpdate блокируют строку
// до конца транзакции; вне транзакции они эквивалентны обычному чтению.
// Методы Update*Status дополнительно защищены условием на текущий статус,
// чтобы исключить потерянные обновления.
type Tx interface {
	// Пользователи
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	MarkPhoneVerified(ctx context.Context, id uuid.UUID, phone string) error

	// Предметы
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	SetItemStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error
	ListCategories(ctx context.Context) ([]models.ItemCategory, error)
	AddItemPhoto(ctx context.Context, photo *models.ItemPhoto) error
	GetItemPhoto(ctx context.Context, id uuid.UUID) (*models.ItemPhoto, error)
	DeleteItemPhoto(ctx context.Context, id uuid.UUID) error

	// Предложения обмена
	CreateOffer(ctx context.Context, offer *models.TradeOffer) error
	GetOffer(ctx context.Context, id uuid.UUID) (*models.TradeOffer, error)
	GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*models.TradeOffer, error)
	UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to models.TradeOfferStatus, respondedAt time.Time) error
	HasPendingOffer(ctx context.Context, itemID, offeredItemID uuid.UUID) (bool, error)
	ListReceivedOffers(ctx context.Context, ownerID uuid.UUID) ([]models.TradeOffer, error)
	ListMadeOffers(ctx context.Context, offererID uuid.UUID) ([]models.TradeOffer, error)
	ListCounterOffers(ctx context.Context, parentID uuid.UUID) ([]models.TradeOffer, error)

	// Обмены
	CreateTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	GetTradeForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	UpdateTradeStatus(ctx context.Context, id uuid.UUID, from, to models.TradeStatus, completedAt *time.Time) error
	UpdateTradeDetails(ctx context.Context, id uuid.UUID, details TradeDetails) error
	ListActiveTrades(ctx context.Context, userID uuid.UUID) ([]models.Trade, error)

	// Отзывы
	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, id uuid.UUID, upd ReviewUpdate) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ListUserReviews(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error)
	ListTradeReviews(ctx context.Context, tradeID uuid.UUID) ([]models.Review, error)

	// Подписки
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscriptionByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus) error
}

// Store расширяет Tx возможностью выполнить набор операций в одной
// транзакции. Все мутации нескольких строк обязаны проходить через WithinTx.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
