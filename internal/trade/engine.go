// Package trade содержит ядро переговоров об обмене: конечный автомат
// предложений (pending → accepted/rejected/withdrawn/countered) и жизненный
// цикл обменов. Все переходы выполняются в одной транзакции с блокировкой
// строки и условием на текущий статус, поэтому из двух конкурентных переходов
// выполняется ровно один.
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/storage"
)

// Engine реализует переговоры о предложениях обмена
type Engine struct {
	store storage.Store
	now   func() time.Time
}

// NewEngine создает движок поверх хранилища
func NewEngine(store storage.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// OfferInput содержит данные нового предложения
type OfferInput struct {
	ItemID        uuid.UUID
	OfferedItemID uuid.UUID
	Message       string
}

// buildOffer валидирует и сохраняет предложение внутри транзакции.
// Владелец запрашиваемого предмета определяется по текущей записи предмета.
func (e *Engine) buildOffer(ctx context.Context, tx storage.Tx, in OfferInput, offererID uuid.UUID, parentID *uuid.UUID) (*models.TradeOffer, error) {
	if in.ItemID == in.OfferedItemID {
		return nil, fmt.Errorf("%w: cannot trade an item for itself", guard.ErrValidation)
	}

	item, err := tx.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("requested item: %w", err)
	}
	if item.Status != models.ItemStatusActive {
		return nil, fmt.Errorf("%w: requested item is not active", guard.ErrInvalidState)
	}

	offered, err := tx.GetItem(ctx, in.OfferedItemID)
	if err != nil {
		return nil, fmt.Errorf("offered item: %w", err)
	}
	if offered.OwnerID != offererID {
		return nil, fmt.Errorf("%w: offered item does not belong to you", guard.ErrUnauthorized)
	}
	if offered.Status != models.ItemStatusActive {
		return nil, fmt.Errorf("%w: offered item is not active", guard.ErrInvalidState)
	}
	if item.OwnerID == offererID {
		return nil, fmt.Errorf("%w: cannot make an offer on your own item", guard.ErrValidation)
	}

	exists, err := tx.HasPendingOffer(ctx, in.ItemID, in.OfferedItemID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a pending offer for these items already exists", guard.ErrInvalidState)
	}

	now := e.now()
	offer := &models.TradeOffer{
		ID:             uuid.New(),
		Status:         models.OfferStatusPending,
		ItemID:         in.ItemID,
		ItemOwnerID:    item.OwnerID,
		OffererID:      offererID,
		OfferedItemID:  in.OfferedItemID,
		Message:        in.Message,
		IsCounterOffer: parentID != nil,
		ParentOfferID:  parentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := tx.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// CreateOffer создает новое предложение обмена со статусом pending
func (e *Engine) CreateOffer(ctx context.Context, in OfferInput, offererID uuid.UUID) (*models.TradeOffer, error) {
	var offer *models.TradeOffer
	err := e.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		offer, err = e.buildOffer(ctx, tx, in, offererID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// AcceptOffer принимает предложение и атомарно создает обмен.
// Принять может только владелец запрашиваемого предмета, и только один раз:
// предложение помечается accepted и вставка обмена фиксируются одной
// транзакцией, поэтому обмен-сирота невозможен.
func (e *Engine) AcceptOffer(ctx context.Context, offerID, actorID uuid.UUID) (*models.Trade, error) {
	var trade *models.Trade
	err := e.store.WithinTx(ctx, func(tx storage.Tx) error {
		offer, err := tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer.ItemOwnerID != actorID {
			return fmt.Errorf("%w: only the item owner may accept an offer", guard.ErrUnauthorized)
		}
		if offer.Status != models.OfferStatusPending {
			return fmt.Errorf("%w: offer is already %s", guard.ErrInvalidState, offer.Status)
		}

		now := e.now()
		if err := tx.UpdateOfferStatus(ctx, offerID, models.OfferStatusPending, models.OfferStatusAccepted, now); err != nil {
			return err
		}

		trade = &models.Trade{
			ID:        uuid.New(),
			Status:    models.TradeStatusAccepted,
			Item1ID:   offer.ItemID,
			Item2ID:   offer.OfferedItemID,
			User1ID:   offer.ItemOwnerID,
			User2ID:   offer.OffererID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.CreateTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// RejectOffer отклоняет предложение. Терминальный переход.
func (e *Engine) RejectOffer(ctx context.Context, offerID, actorID uuid.UUID) error {
	return e.store.WithinTx(ctx, func(tx storage.Tx) error {
		offer, err := tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer.ItemOwnerID != actorID {
			return fmt.Errorf("%w: only the item owner may reject an offer", guard.ErrUnauthorized)
		}
		if offer.Status != models.OfferStatusPending {
			return fmt.Errorf("%w: offer is already %s", guard.ErrInvalidState, offer.Status)
		}
		return tx.UpdateOfferStatus(ctx, offerID, models.OfferStatusPending, models.OfferStatusRejected, e.now())
	})
}

// WithdrawOffer отзывает собственное предложение до ответа владельца
func (e *Engine) WithdrawOffer(ctx context.Context, offerID, actorID uuid.UUID) error {
	return e.store.WithinTx(ctx, func(tx storage.Tx) error {
		offer, err := tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer.OffererID != actorID {
			return fmt.Errorf("%w: only the offerer may withdraw an offer", guard.ErrUnauthorized)
		}
		if offer.Status != models.OfferStatusPending {
			return fmt.Errorf("%w: offer is already %s", guard.ErrInvalidState, offer.Status)
		}
		return tx.UpdateOfferStatus(ctx, offerID, models.OfferStatusPending, models.OfferStatusWithdrawn, e.now())
	})
}

// CounterOffer создает контрпредложение и атомарно помечает родительское
// предложение как countered, чтобы его нельзя было принять после ответа
func (e *Engine) CounterOffer(ctx context.Context, parentOfferID uuid.UUID, in OfferInput, actorID uuid.UUID) (*models.TradeOffer, error) {
	var counter *models.TradeOffer
	err := e.store.WithinTx(ctx, func(tx storage.Tx) error {
		parent, err := tx.GetOfferForUpdate(ctx, parentOfferID)
		if err != nil {
			return err
		}
		if err := guard.RequireParticipant(actorID, parent.ItemOwnerID, parent.OffererID); err != nil {
			return fmt.Errorf("%w: only a participant may counter an offer", err)
		}
		if parent.Status != models.OfferStatusPending {
			return fmt.Errorf("%w: offer is already %s", guard.ErrInvalidState, parent.Status)
		}

		counter, err = e.buildOffer(ctx, tx, in, actorID, &parent.ID)
		if err != nil {
			return err
		}
		return tx.UpdateOfferStatus(ctx, parentOfferID, models.OfferStatusPending, models.OfferStatusCountered, e.now())
	})
	if err != nil {
		return nil, err
	}
	return counter, nil
}

// ListCounters возвращает контрпредложения. Доступно только сторонам
// исходного предложения.
func (e *Engine) ListCounters(ctx context.Context, offerID, actorID uuid.UUID) ([]models.TradeOffer, error) {
	offer, err := e.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireParticipant(actorID, offer.ItemOwnerID, offer.OffererID); err != nil {
		return nil, fmt.Errorf("%w: only a participant may view counter offers", err)
	}
	return e.store.ListCounterOffers(ctx, offerID)
}

// ReceivedOffers возвращает предложения, полученные пользователем
func (e *Engine) ReceivedOffers(ctx context.Context, userID uuid.UUID) ([]models.TradeOffer, error) {
	return e.store.ListReceivedOffers(ctx, userID)
}

// MadeOffers возвращает предложения, сделанные пользователем
func (e *Engine) MadeOffers(ctx context.Context, userID uuid.UUID) ([]models.TradeOffer, error) {
	return e.store.ListMadeOffers(ctx, userID)
}
