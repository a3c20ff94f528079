package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
)

// CreateSubscription сохраняет подписку пользователя. У пользователя не
// более одной строки подписки, повторное оформление замещает отмененную.
func (s *Postgres) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, status, provider,
			provider_subscription_id, provider_customer_id, amount, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			provider = EXCLUDED.provider,
			provider_subscription_id = EXCLUDED.provider_subscription_id,
			provider_customer_id = EXCLUDED.provider_customer_id,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
	`, sub.ID, sub.UserID, sub.Status, sub.Provider,
		sub.ProviderSubscriptionID, sub.ProviderCustomerID, sub.Amount, sub.Currency,
		sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания подписки: %w", err)
	}
	return nil
}

// GetSubscriptionByUser возвращает подписку пользователя
func (s *Postgres) GetSubscriptionByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.q.QueryRow(ctx, `
		SELECT id, user_id, status, provider, provider_subscription_id, provider_customer_id,
			amount, currency, created_at, updated_at
		FROM subscriptions WHERE user_id = $1
	`, userID).Scan(
		&sub.ID, &sub.UserID, &sub.Status, &sub.Provider, &sub.ProviderSubscriptionID,
		&sub.ProviderCustomerID, &sub.Amount, &sub.Currency, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guard.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения подписки: %w", err)
	}
	return &sub, nil
}

// UpdateSubscriptionStatus меняет статус подписки
func (s *Postgres) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса подписки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}
