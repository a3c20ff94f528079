package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus представляет статус подписки
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusCancelled  SubscriptionStatus = "cancelled"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
)

// Subscription представляет платную подписку пользователя.
// У пользователя может быть не более одной подписки.
type Subscription struct {
	ID     uuid.UUID          `json:"id"`
	UserID uuid.UUID          `json:"user_id"`
	Status SubscriptionStatus `json:"status"`

	// Данные платежного провайдера
	Provider               string `json:"provider"`
	ProviderSubscriptionID string `json:"provider_subscription_id"`
	ProviderCustomerID     string `json:"provider_customer_id"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
