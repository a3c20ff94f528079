// Package guard содержит общую таксономию ошибок и проверки прав доступа,
// используемые движком обменов и шлюзом отзывов. Все проверки выполняются
// внутри той же транзакции, что и мутация, поэтому между проверкой и
// изменением состояния нет окна гонки.
package guard

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

var (
	// ErrNotFound сущность с указанным ID не существует
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized пользователь не входит в набор допустимых участников
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState операция недопустима в текущем состоянии сущности
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation входные данные не прошли валидацию
	ErrValidation = errors.New("validation failed")

	// ErrInternal временная ошибка хранилища, вызов можно повторить
	ErrInternal = errors.New("internal error")
)

// RequireParticipant возвращает ErrUnauthorized, если userID не входит
// в набор допустимых участников операции
func RequireParticipant(userID uuid.UUID, participants ...uuid.UUID) error {
	for _, p := range participants {
		if p == userID {
			return nil
		}
	}
	return ErrUnauthorized
}

// HTTPStatus сопоставляет ошибку таксономии с HTTP-статусом.
// Ошибка "не найдено" и "не ваше" намеренно различимы для клиента.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
