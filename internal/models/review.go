package models

import (
	"time"

	"github.com/google/uuid"
)

// Review представляет отзыв о завершенном обмене
type Review struct {
	ID         uuid.UUID `json:"id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	TradeID    uuid.UUID `json:"trade_id"`

	Rating  int    `json:"rating"` // От 1 до 5
	Title   string `json:"title"`
	Comment string `json:"comment,omitempty"`

	IsPublic    bool `json:"is_public"`
	IsAnonymous bool `json:"is_anonymous"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Дополнительные поля для API
	Reviewer *UserProfile `json:"reviewer,omitempty"`
}
