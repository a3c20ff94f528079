package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
)

const offerColumns = `id, status, item_id, item_owner_id, offerer_id, offered_item_id,
	message, is_counter_offer, parent_offer_id, created_at, updated_at, responded_at`

func scanOffer(row pgx.Row) (*models.TradeOffer, error) {
	var o models.TradeOffer
	err := row.Scan(
		&o.ID, &o.Status, &o.ItemID, &o.ItemOwnerID, &o.OffererID, &o.OfferedItemID,
		&o.Message, &o.IsCounterOffer, &o.ParentOfferID, &o.CreatedAt, &o.UpdatedAt, &o.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guard.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения предложения: %w", err)
	}
	return &o, nil
}

func (s *Postgres) listOffers(ctx context.Context, query string, args ...any) ([]models.TradeOffer, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предложений: %w", err)
	}
	defer rows.Close()

	var offers []models.TradeOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// CreateOffer сохраняет новое предложение обмена
func (s *Postgres) CreateOffer(ctx context.Context, o *models.TradeOffer) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO trade_offers (id, status, item_id, item_owner_id, offerer_id, offered_item_id,
			message, is_counter_offer, parent_offer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, o.ID, o.Status, o.ItemID, o.ItemOwnerID, o.OffererID, o.OfferedItemID,
		o.Message, o.IsCounterOffer, o.ParentOfferID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания предложения: %w", err)
	}
	return nil
}

// GetOffer возвращает предложение по ID
func (s *Postgres) GetOffer(ctx context.Context, id uuid.UUID) (*models.TradeOffer, error) {
	row := s.q.QueryRow(ctx, `SELECT `+offerColumns+` FROM trade_offers WHERE id = $1`, id)
	return scanOffer(row)
}

// GetOfferForUpdate возвращает предложение, блокируя его строку до конца
// транзакции. Закрывает окно между проверкой прав и мутацией.
func (s *Postgres) GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*models.TradeOffer, error) {
	row := s.q.QueryRow(ctx, `SELECT `+offerColumns+` FROM trade_offers WHERE id = $1 FOR UPDATE`, id)
	return scanOffer(row)
}

// UpdateOfferStatus переводит предложение из статуса from в to.
// Условие на текущий статус гарантирует, что из двух конкурентных переходов
// выполнится только один.
func (s *Postgres) UpdateOfferStatus(ctx context.Context, id uuid.UUID, from, to models.TradeOfferStatus, respondedAt time.Time) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE trade_offers
		SET status = $3, responded_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to, respondedAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса предложения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrInvalidState
	}
	return nil
}

// HasPendingOffer проверяет, существует ли уже ожидающее предложение
// с той же парой предметов
func (s *Postgres) HasPendingOffer(ctx context.Context, itemID, offeredItemID uuid.UUID) (bool, error) {
	var count int
	err := s.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM trade_offers
		WHERE item_id = $1 AND offered_item_id = $2 AND status = 'pending'
	`, itemID, offeredItemID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки существующих предложений: %w", err)
	}
	return count > 0, nil
}

// ListReceivedOffers возвращает предложения, адресованные владельцу предметов
func (s *Postgres) ListReceivedOffers(ctx context.Context, ownerID uuid.UUID) ([]models.TradeOffer, error) {
	return s.listOffers(ctx, `
		SELECT `+offerColumns+` FROM trade_offers
		WHERE item_owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
}

// ListMadeOffers возвращает предложения, сделанные пользователем
func (s *Postgres) ListMadeOffers(ctx context.Context, offererID uuid.UUID) ([]models.TradeOffer, error) {
	return s.listOffers(ctx, `
		SELECT `+offerColumns+` FROM trade_offers
		WHERE offerer_id = $1
		ORDER BY created_at DESC
	`, offererID)
}

// ListCounterOffers возвращает контрпредложения для указанного предложения
func (s *Postgres) ListCounterOffers(ctx context.Context, parentID uuid.UUID) ([]models.TradeOffer, error) {
	return s.listOffers(ctx, `
		SELECT `+offerColumns+` FROM trade_offers
		WHERE parent_offer_id = $1
		ORDER BY created_at ASC
	`, parentID)
}
