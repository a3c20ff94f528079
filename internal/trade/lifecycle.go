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

// Lifecycle управляет жизненным циклом обмена после принятия предложения
type Lifecycle struct {
	store storage.Store
	now   func() time.Time

	// autoRetireItems включает перевод обоих предметов в статус traded
	// при завершении обмена
	autoRetireItems bool
}

// NewLifecycle создает менеджер жизненного цикла обменов
func NewLifecycle(store storage.Store, autoRetireItems bool) *Lifecycle {
	return &Lifecycle{store: store, now: time.Now, autoRetireItems: autoRetireItems}
}

// Complete завершает обмен. Допустимо только из статуса accepted и только
// участником обмена. Повторное завершение возвращает ErrInvalidState.
func (l *Lifecycle) Complete(ctx context.Context, tradeID, actorID uuid.UUID) error {
	return l.store.WithinTx(ctx, func(tx storage.Tx) error {
		trade, err := tx.GetTradeForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}
		if err := guard.RequireParticipant(actorID, trade.User1ID, trade.User2ID); err != nil {
			return fmt.Errorf("%w: only a trade participant may complete it", err)
		}
		if trade.Status != models.TradeStatusAccepted {
			return fmt.Errorf("%w: trade is %s", guard.ErrInvalidState, trade.Status)
		}

		now := l.now()
		if err := tx.UpdateTradeStatus(ctx, tradeID, models.TradeStatusAccepted, models.TradeStatusCompleted, &now); err != nil {
			return err
		}

		if !l.autoRetireItems {
			return nil
		}
		// Обмененные предметы больше не должны показываться как активные
		if err := tx.SetItemStatus(ctx, trade.Item1ID, models.ItemStatusTraded); err != nil {
			return err
		}
		return tx.SetItemStatus(ctx, trade.Item2ID, models.ItemStatusTraded)
	})
}

// Cancel отменяет обмен. Допустимо из статусов pending и accepted.
func (l *Lifecycle) Cancel(ctx context.Context, tradeID, actorID uuid.UUID) error {
	return l.store.WithinTx(ctx, func(tx storage.Tx) error {
		trade, err := tx.GetTradeForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}
		if err := guard.RequireParticipant(actorID, trade.User1ID, trade.User2ID); err != nil {
			return fmt.Errorf("%w: only a trade participant may cancel it", err)
		}
		if trade.Status != models.TradeStatusPending && trade.Status != models.TradeStatusAccepted {
			return fmt.Errorf("%w: trade is %s", guard.ErrInvalidState, trade.Status)
		}
		return tx.UpdateTradeStatus(ctx, tradeID, trade.Status, models.TradeStatusCancelled, nil)
	})
}

// UpdateDetails обновляет детали встречи по незавершенному обмену
func (l *Lifecycle) UpdateDetails(ctx context.Context, tradeID, actorID uuid.UUID, details storage.TradeDetails) error {
	return l.store.WithinTx(ctx, func(tx storage.Tx) error {
		trade, err := tx.GetTradeForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}
		if err := guard.RequireParticipant(actorID, trade.User1ID, trade.User2ID); err != nil {
			return fmt.Errorf("%w: only a trade participant may edit it", err)
		}
		if trade.Status != models.TradeStatusPending && trade.Status != models.TradeStatusAccepted {
			return fmt.Errorf("%w: trade is %s", guard.ErrInvalidState, trade.Status)
		}
		return tx.UpdateTradeDetails(ctx, tradeID, details)
	})
}

// Get возвращает обмен, доступный только его участникам
func (l *Lifecycle) Get(ctx context.Context, tradeID, actorID uuid.UUID) (*models.Trade, error) {
	trade, err := l.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireParticipant(actorID, trade.User1ID, trade.User2ID); err != nil {
		return nil, fmt.Errorf("%w: only a trade participant may view it", err)
	}
	return trade, nil
}

// ActiveTrades возвращает незавершенные обмены пользователя
func (l *Lifecycle) ActiveTrades(ctx context.Context, userID uuid.UUID) ([]models.Trade, error) {
	return l.store.ListActiveTrades(ctx, userID)
}
