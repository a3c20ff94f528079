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

const reviewColumns = `id, reviewer_id, reviewee_id, trade_id, rating, title, comment,
	is_public, is_anonymous, created_at, updated_at`

func scanReview(row pgx.Row) (*models.Review, error) {
	var r models.Review
	err := row.Scan(
		&r.ID, &r.ReviewerID, &r.RevieweeID, &r.TradeID, &r.Rating, &r.Title, &r.Comment,
		&r.IsPublic, &r.IsAnonymous, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guard.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения отзыва: %w", err)
	}
	return &r, nil
}

// CreateReview сохраняет новый отзыв
func (s *Postgres) CreateReview(ctx context.Context, r *models.Review) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO reviews (id, reviewer_id, reviewee_id, trade_id, rating, title, comment,
			is_public, is_anonymous, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.ReviewerID, r.RevieweeID, r.TradeID, r.Rating, r.Title, r.Comment,
		r.IsPublic, r.IsAnonymous, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания отзыва: %w", err)
	}
	return nil
}

// GetReview возвращает отзыв по ID
func (s *Postgres) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	row := s.q.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	return scanReview(row)
}

// UpdateReview обновляет поля отзыва. Nil-поля не изменяются.
func (s *Postgres) UpdateReview(ctx context.Context, id uuid.UUID, upd ReviewUpdate) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE reviews
		SET rating = COALESCE($2, rating),
			title = COALESCE($3, title),
			comment = COALESCE($4, comment),
			is_public = COALESCE($5, is_public),
			is_anonymous = COALESCE($6, is_anonymous),
			updated_at = NOW()
		WHERE id = $1
	`, id, upd.Rating, upd.Title, upd.Comment, upd.IsPublic, upd.IsAnonymous)
	if err != nil {
		return fmt.Errorf("ошибка обновления отзыва: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}

// DeleteReview удаляет отзыв
func (s *Postgres) DeleteReview(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления отзыва: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}

func (s *Postgres) listReviews(ctx context.Context, query string, args ...any) ([]models.Review, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса отзывов: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

// ListUserReviews возвращает публичные отзывы о пользователе
func (s *Postgres) ListUserReviews(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.listReviews(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE reviewee_id = $1 AND is_public = TRUE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
}

// ListTradeReviews возвращает отзывы по конкретному обмену
func (s *Postgres) ListTradeReviews(ctx context.Context, tradeID uuid.UUID) ([]models.Review, error) {
	return s.listReviews(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE trade_id = $1
		ORDER BY created_at ASC
	`, tradeID)
}
