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

const userColumns = `id, email, username, full_name, phone_number, phone_verified,
	zip_code, city, state, google_id, bio, avatar_url, is_active,
	created_at, updated_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.PhoneNumber, &u.PhoneVerified,
		&u.ZipCode, &u.City, &u.State, &u.GoogleID, &u.Bio, &u.AvatarURL, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guard.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &u, nil
}

// GetUser возвращает пользователя по ID
func (s *Postgres) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByGoogleID возвращает пользователя по привязке Google
func (s *Postgres) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
	return scanUser(row)
}

// CreateUser сохраняет нового пользователя
func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO users (id, email, username, full_name, phone_number, phone_verified,
			zip_code, city, state, google_id, bio, avatar_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, u.ID, u.Email, u.Username, u.FullName, u.PhoneNumber, u.PhoneVerified,
		u.ZipCode, u.City, u.State, u.GoogleID, u.Bio, u.AvatarURL, u.IsActive,
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

// UpdateUser обновляет профиль пользователя
func (s *Postgres) UpdateUser(ctx context.Context, u *models.User) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE users
		SET username = $2, full_name = $3, zip_code = $4, city = $5, state = $6,
			bio = $7, avatar_url = $8, updated_at = NOW()
		WHERE id = $1
	`, u.ID, u.Username, u.FullName, u.ZipCode, u.City, u.State, u.Bio, u.AvatarURL)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}

// TouchLastLogin обновляет время последнего входа
func (s *Postgres) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.Exec(ctx, `
		UPDATE users SET last_login_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления времени входа: %w", err)
	}
	return nil
}

// MarkPhoneVerified сохраняет подтвержденный номер телефона
func (s *Postgres) MarkPhoneVerified(ctx context.Context, id uuid.UUID, phone string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE users SET phone_number = $2, phone_verified = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id, phone)
	if err != nil {
		return fmt.Errorf("ошибка подтверждения телефона: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}
