package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus представляет статус предмета
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusTraded   ItemStatus = "traded"
	ItemStatusArchived ItemStatus = "archived"
)

// ItemCategory представляет категорию предметов
type ItemCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item представляет предмет, выставленный на обмен
type Item struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Condition   string    `json:"condition"` // new, like_new, good, fair, poor

	// Локация предмета
	ZipCode   string   `json:"zip_code"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Status    ItemStatus `json:"status"`
	IsVisible bool       `json:"is_visible"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Дополнительные поля для API
	Photos []ItemPhoto  `json:"photos,omitempty"`
	Owner  *UserProfile `json:"owner,omitempty"`
}

// ItemPhoto представляет фотографию предмета
type ItemPhoto struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	URL        string    `json:"url"`
	PublicID   string    `json:"public_id"`
	IsPrimary  bool      `json:"is_primary"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidConditions набор допустимых значений состояния предмета
var ValidConditions = map[string]bool{
	"new": true, "like_new": true, "good": true, "fair": true, "poor": true,
}
