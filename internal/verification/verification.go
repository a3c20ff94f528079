// Package verification реализует подтверждение номера телефона одноразовым
// кодом. Коды живут в Redis с TTL, отправка идет через SMSSender.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/storage"
)

const (
	codeTTL     = 10 * time.Minute
	maxAttempts = 5
)

// SMSSender отправляет SMS с кодом подтверждения
type SMSSender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// LogSender пишет код в лог вместо отправки SMS. Используется в development
type LogSender struct{}

func (LogSender) Send(_ context.Context, phoneNumber, message string) error {
	log.Printf("📱 SMS для %s: %s", phoneNumber, message)
	return nil
}

// Service управляет кодами подтверждения телефона
type Service struct {
	rdb    *redis.Client
	sender SMSSender
	store  storage.Store
}

// NewService создает сервис подтверждения телефона
func NewService(rdb *redis.Client, sender SMSSender, store storage.Store) *Service {
	return &Service{rdb: rdb, sender: sender, store: store}
}

func codeKey(userID uuid.UUID) string     { return fmt.Sprintf("phone_code:%s", userID) }
func attemptsKey(userID uuid.UUID) string { return fmt.Sprintf("phone_attempts:%s", userID) }

// generateCode возвращает шестизначный код
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("ошибка генерации кода: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendCode генерирует код, сохраняет его с TTL и отправляет на номер.
// Повторная отправка перезаписывает прежний код и сбрасывает счетчик попыток.
func (s *Service) SendCode(ctx context.Context, userID uuid.UUID, phoneNumber string) error {
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number is required", guard.ErrValidation)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, codeKey(userID), code, codeTTL).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения кода в Redis: %w", err)
	}
	if err := s.rdb.Del(ctx, attemptsKey(userID)).Err(); err != nil {
		return fmt.Errorf("ошибка сброса счетчика попыток: %w", err)
	}

	message := fmt.Sprintf("Your Trade Me verification code is %s", code)
	return s.sender.Send(ctx, phoneNumber, message)
}

// VerifyCode сверяет код и помечает телефон подтвержденным. Код одноразовый,
// после maxAttempts неверных попыток он аннулируется.
func (s *Service) VerifyCode(ctx context.Context, userID uuid.UUID, phoneNumber, code string) error {
	stored, err := s.rdb.Get(ctx, codeKey(userID)).Result()
	if err == redis.Nil {
		return fmt.Errorf("%w: verification code expired or not requested", guard.ErrInvalidState)
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения кода из Redis: %w", err)
	}

	if stored != code {
		attempts, err := s.rdb.Incr(ctx, attemptsKey(userID)).Result()
		if err != nil {
			return fmt.Errorf("ошибка учета попытки: %w", err)
		}
		s.rdb.Expire(ctx, attemptsKey(userID), codeTTL)
		if attempts >= maxAttempts {
			s.rdb.Del(ctx, codeKey(userID), attemptsKey(userID))
			return fmt.Errorf("%w: too many attempts, request a new code", guard.ErrInvalidState)
		}
		return fmt.Errorf("%w: invalid verification code", guard.ErrValidation)
	}

	if err := s.store.MarkPhoneVerified(ctx, userID, phoneNumber); err != nil {
		return err
	}

	s.rdb.Del(ctx, codeKey(userID), attemptsKey(userID))
	return nil
}
