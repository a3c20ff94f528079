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

const tradeColumns = `id, status, item1_id, item2_id, user1_id, user2_id,
	meeting_location, meeting_time, notes, created_at, updated_at, completed_at`

func scanTrade(row pgx.Row) (*models.Trade, error) {
	var t models.Trade
	err := row.Scan(
		&t.ID, &t.Status, &t.Item1ID, &t.Item2ID, &t.User1ID, &t.User2ID,
		&t.MeetingLocation, &t.MeetingTime, &t.Notes, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guard.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения обмена: %w", err)
	}
	return &t, nil
}

// CreateTrade сохраняет новый обмен
func (s *Postgres) CreateTrade(ctx context.Context, t *models.Trade) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO trades (id, status, item1_id, item2_id, user1_id, user2_id,
			meeting_location, meeting_time, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, t.ID, t.Status, t.Item1ID, t.Item2ID, t.User1ID, t.User2ID,
		t.MeetingLocation, t.MeetingTime, t.Notes, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания обмена: %w", err)
	}
	return nil
}

// GetTrade возвращает обмен по ID
func (s *Postgres) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	row := s.q.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
	return scanTrade(row)
}

// GetTradeForUpdate возвращает обмен, блокируя его строку до конца транзакции
func (s *Postgres) GetTradeForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	row := s.q.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1 FOR UPDATE`, id)
	return scanTrade(row)
}

// UpdateTradeStatus переводит обмен из статуса from в to с защитой от
// конкурентного перехода
func (s *Postgres) UpdateTradeStatus(ctx context.Context, id uuid.UUID, from, to models.TradeStatus, completedAt *time.Time) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE trades
		SET status = $3, completed_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to, completedAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса обмена: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrInvalidState
	}
	return nil
}

// UpdateTradeDetails обновляет детали встречи. Nil-поля не изменяются.
func (s *Postgres) UpdateTradeDetails(ctx context.Context, id uuid.UUID, details TradeDetails) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE trades
		SET meeting_location = COALESCE($2, meeting_location),
			meeting_time = COALESCE($3, meeting_time),
			notes = COALESCE($4, notes),
			updated_at = NOW()
		WHERE id = $1
	`, id, details.MeetingLocation, details.MeetingTime, details.Notes)
	if err != nil {
		return fmt.Errorf("ошибка обновления деталей обмена: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}

// ListActiveTrades возвращает незавершенные обмены пользователя
func (s *Postgres) ListActiveTrades(ctx context.Context, userID uuid.UUID) ([]models.Trade, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE (user1_id = $1 OR user2_id = $1) AND status IN ('pending', 'accepted')
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса обменов: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}
