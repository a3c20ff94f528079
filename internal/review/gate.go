// Package review содержит шлюз отзывов: отзыв допускается только по
// завершенному обмену и только от его участника.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/storage"
)

// Gate проверяет условия создания и изменения отзывов
type Gate struct {
	store storage.Store
	now   func() time.Time
}

// NewGate создает шлюз отзывов поверх хранилища
func NewGate(store storage.Store) *Gate {
	return &Gate{store: store, now: time.Now}
}

// CreateInput содержит данные нового отзыва
type CreateInput struct {
	TradeID     uuid.UUID
	RevieweeID  uuid.UUID
	Rating      int
	Title       string
	Comment     string
	IsPublic    bool
	IsAnonymous bool
}

// Create создает отзыв. Оценка строго от 1 до 5, обмен должен быть завершен,
// автор и адресат отзыва — разные участники этого обмена.
func (g *Gate) Create(ctx context.Context, in CreateInput, reviewerID uuid.UUID) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", guard.ErrValidation)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", guard.ErrValidation)
	}

	var rev *models.Review
	err := g.store.WithinTx(ctx, func(tx storage.Tx) error {
		trade, err := tx.GetTrade(ctx, in.TradeID)
		if err != nil {
			return err
		}
		if err := guard.RequireParticipant(reviewerID, trade.User1ID, trade.User2ID); err != nil {
			return fmt.Errorf("%w: only a trade participant may leave a review", err)
		}
		if trade.Status != models.TradeStatusCompleted {
			return fmt.Errorf("%w: trade is not completed", guard.ErrInvalidState)
		}
		if in.RevieweeID == reviewerID {
			return fmt.Errorf("%w: cannot review yourself", guard.ErrValidation)
		}
		if !trade.IsParticipant(in.RevieweeID) {
			return fmt.Errorf("%w: reviewee is not a participant of this trade", guard.ErrValidation)
		}

		now := g.now()
		rev = &models.Review{
			ID:          uuid.New(),
			ReviewerID:  reviewerID,
			RevieweeID:  in.RevieweeID,
			TradeID:     in.TradeID,
			Rating:      in.Rating,
			Title:       in.Title,
			Comment:     in.Comment,
			IsPublic:    in.IsPublic,
			IsAnonymous: in.IsAnonymous,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.CreateReview(ctx, rev)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Update изменяет отзыв. Доступно только его автору.
func (g *Gate) Update(ctx context.Context, reviewID, actorID uuid.UUID, upd storage.ReviewUpdate) error {
	if upd.Rating != nil && (*upd.Rating < 1 || *upd.Rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", guard.ErrValidation)
	}
	return g.store.WithinTx(ctx, func(tx storage.Tx) error {
		rev, err := tx.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if rev.ReviewerID != actorID {
			return fmt.Errorf("%w: only the reviewer may edit a review", guard.ErrUnauthorized)
		}
		return tx.UpdateReview(ctx, reviewID, upd)
	})
}

// Delete удаляет отзыв. Доступно только его автору.
func (g *Gate) Delete(ctx context.Context, reviewID, actorID uuid.UUID) error {
	return g.store.WithinTx(ctx, func(tx storage.Tx) error {
		rev, err := tx.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if rev.ReviewerID != actorID {
			return fmt.Errorf("%w: only the reviewer may delete a review", guard.ErrUnauthorized)
		}
		return tx.DeleteReview(ctx, reviewID)
	})
}

// Get возвращает отзыв по ID
func (g *Gate) Get(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	return g.store.GetReview(ctx, reviewID)
}

// UserReviews возвращает публичные отзывы о пользователе
func (g *Gate) UserReviews(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	return g.store.ListUserReviews(ctx, userID, limit, offset)
}

// TradeReviews возвращает отзывы по обмену
func (g *Gate) TradeReviews(ctx context.Context, tradeID uuid.UUID) ([]models.Review, error) {
	return g.store.ListTradeReviews(ctx, tradeID)
}
