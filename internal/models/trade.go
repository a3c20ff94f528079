package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus представляет статус обмена
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusAccepted  TradeStatus = "accepted"
	TradeStatusRejected  TradeStatus = "rejected"
	TradeStatusCompleted TradeStatus = "completed"
	TradeStatusCancelled TradeStatus = "cancelled"
)

// TradeOfferStatus представляет статус предложения обмена
type TradeOfferStatus string

const (
	OfferStatusPending   TradeOfferStatus = "pending"
	OfferStatusAccepted  TradeOfferStatus = "accepted"
	OfferStatusRejected  TradeOfferStatus = "rejected"
	OfferStatusCountered TradeOfferStatus = "countered"
	OfferStatusWithdrawn TradeOfferStatus = "withdrawn"
)

// TradeOffer представляет предложение обмена. Цепочка контрпредложений
// образует дерево через ParentOfferID; узел с пустым ParentOfferID является
// корневым предложением.
type TradeOffer struct {
	ID     uuid.UUID        `json:"id"`
	Status TradeOfferStatus `json:"status"`

	// Запрашиваемый предмет и его владелец на момент создания предложения
	ItemID      uuid.UUID `json:"item_id"`
	ItemOwnerID uuid.UUID `json:"item_owner_id"`

	// Пользователь, сделавший предложение, и предмет, предложенный взамен
	OffererID     uuid.UUID `json:"offerer_id"`
	OfferedItemID uuid.UUID `json:"offered_item_id"`

	Message        string     `json:"message,omitempty"`
	IsCounterOffer bool       `json:"is_counter_offer"`
	ParentOfferID  *uuid.UUID `json:"parent_offer_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	// Дополнительные поля для API
	Item        *Item        `json:"item,omitempty"`
	OfferedItem *Item        `json:"offered_item,omitempty"`
	Offerer     *UserProfile `json:"offerer,omitempty"`
}

// Trade представляет состоявшийся обмен, созданный при принятии предложения
type Trade struct {
	ID     uuid.UUID   `json:"id"`
	Status TradeStatus `json:"status"`

	// Обмениваемые предметы
	Item1ID uuid.UUID `json:"item1_id"`
	Item2ID uuid.UUID `json:"item2_id"`

	// Участники обмена: User1 — владелец запрошенного предмета,
	// User2 — автор предложения
	User1ID uuid.UUID `json:"user1_id"`
	User2ID uuid.UUID `json:"user2_id"`

	// Детали встречи
	MeetingLocation string     `json:"meeting_location,omitempty"`
	MeetingTime     *time.Time `json:"meeting_time,omitempty"`
	Notes           string     `json:"notes,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Дополнительные поля для API
	Item1 *Item        `json:"item1,omitempty"`
	Item2 *Item        `json:"item2,omitempty"`
	User1 *UserProfile `json:"user1,omitempty"`
	User2 *UserProfile `json:"user2,omitempty"`
}

// IsParticipant проверяет, является ли пользователь участником обмена
func (t *Trade) IsParticipant(userID uuid.UUID) bool {
	return t.User1ID == userID || t.User2ID == userID
}

// IsParticipant проверяет, является ли пользователь стороной предложения
func (o *TradeOffer) IsParticipant(userID uuid.UUID) bool {
	return o.ItemOwnerID == userID || o.OffererID == userID
}
