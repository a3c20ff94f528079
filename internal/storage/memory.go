package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
)

// Memory реализует Store в памяти. Используется в тестах как дубль
// хранилища. Транзакции сериализуются общим мьютексом и работают
// с копией данных, поэтому откат при ошибке не оставляет следов.
type Memory struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	users      map[uuid.UUID]models.User
	items      map[uuid.UUID]models.Item
	categories map[uuid.UUID]models.ItemCategory
	photos     map[uuid.UUID]models.ItemPhoto
	offers     map[uuid.UUID]models.TradeOffer
	trades     map[uuid.UUID]models.Trade
	reviews    map[uuid.UUID]models.Review
	subs       map[uuid.UUID]models.Subscription
}

// NewMemory создает пустое хранилище в памяти
func NewMemory() *Memory {
	return &Memory{
		mu: &sync.Mutex{},
		data: &memData{
			users:      make(map[uuid.UUID]models.User),
			items:      make(map[uuid.UUID]models.Item),
			categories: make(map[uuid.UUID]models.ItemCategory),
			photos:     make(map[uuid.UUID]models.ItemPhoto),
			offers:     make(map[uuid.UUID]models.TradeOffer),
			trades:     make(map[uuid.UUID]models.Trade),
			reviews:    make(map[uuid.UUID]models.Review),
			subs:       make(map[uuid.UUID]models.Subscription),
		},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		users:      cloneMap(d.users),
		items:      cloneMap(d.items),
		categories: cloneMap(d.categories),
		photos:     cloneMap(d.photos),
		offers:     cloneMap(d.offers),
		trades:     cloneMap(d.trades),
		reviews:    cloneMap(d.reviews),
		subs:       cloneMap(d.subs),
	}
}

// WithinTx выполняет fn на копии данных и публикует ее только при успехе
func (m *Memory) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := m.data.clone()
	txm := &Memory{mu: m.mu, data: clone, inTx: true}
	if err := fn(txm); err != nil {
		return err
	}
	m.data = clone
	return nil
}

// lock захватывает мьютекс вне транзакции; внутри транзакции он уже захвачен
func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// --- Пользователи ---

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	defer m.lock()()
	u, ok := m.data.users[id]
	if !ok {
		return nil, guard.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	defer m.lock()()
	for _, u := range m.data.users {
		if u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, guard.ErrNotFound
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	defer m.lock()()
	m.data.users[u.ID] = *u
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, u *models.User) error {
	defer m.lock()()
	stored, ok := m.data.users[u.ID]
	if !ok {
		return guard.ErrNotFound
	}
	stored.Username = u.Username
	stored.FullName = u.FullName
	stored.ZipCode = u.ZipCode
	stored.City = u.City
	stored.State = u.State
	stored.Bio = u.Bio
	stored.AvatarURL = u.AvatarURL
	stored.UpdatedAt = time.Now()
	m.data.users[u.ID] = stored
	return nil
}

func (m *Memory) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	defer m.lock()()
	u, ok := m.data.users[id]
	if !ok {
		return guard.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	m.data.users[id] = u
	return nil
}

func (m *Memory) MarkPhoneVerified(_ context.Context, id uuid.UUID, phone string) error {
	defer m.lock()()
	u, ok := m.data.users[id]
	if !ok {
		return guard.ErrNotFound
	}
	u.PhoneNumber = phone
	u.PhoneVerified = true
	m.data.users[id] = u
	return nil
}

// --- Предметы ---

func (m *Memory) CreateItem(_ context.Context, it *models.Item) error {
	defer m.lock()()
	m.data.items[it.ID] = *it
	return nil
}

func (m *Memory) GetItem(_ context.Context, id uuid.UUID) (*models.Item, error) {
	defer m.lock()()
	it, ok := m.data.items[id]
	if !ok {
		return nil, guard.ErrNotFound
	}
	return &it, nil
}

func (m *Memory) ListItems(_ context.Context, filter ItemFilter) ([]models.Item, error) {
	defer m.lock()()
	var items []models.Item
	for _, it := range m.data.items {
		if filter.OwnerID != nil {
			if it.OwnerID != *filter.OwnerID {
				continue
			}
		} else if !it.IsVisible || it.Status != models.ItemStatusActive {
			continue
		}
		if filter.CategoryID != nil && it.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.ZipCode != "" && it.ZipCode != filter.ZipCode {
			continue
		}
		if filter.City != "" && !strings.EqualFold(it.City, filter.City) {
			continue
		}
		if filter.State != "" && !strings.EqualFold(it.State, filter.State) {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(it.Title), s) &&
				!strings.Contains(strings.ToLower(it.Description), s) {
				continue
			}
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if filter.Offset >= len(items) {
		return nil, nil
	}
	items = items[filter.Offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *Memory) UpdateItem(_ context.Context, it *models.Item) error {
	defer m.lock()()
	if _, ok := m.data.items[it.ID]; !ok {
		return guard.ErrNotFound
	}
	stored := *it
	stored.UpdatedAt = time.Now()
	m.data.items[it.ID] = stored
	return nil
}

func (m *Memory) SetItemStatus(_ context.Context, id uuid.UUID, status models.ItemStatus) error {
	defer m.lock()()
	it, ok := m.data.items[id]
	if !ok {
		return guard.ErrNotFound
	}
	it.Status = status
	it.UpdatedAt = time.Now()
	m.data.items[id] = it
	return nil
}

func (m *Memory) ListCategories(_ context.Context) ([]models.ItemCategory, error) {
	defer m.lock()()
	var categories []models.ItemCategory
	for _, c := range m.data.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *Memory) AddItemPhoto(_ context.Context, p *models.ItemPhoto) error {
	defer m.lock()()
	m.data.photos[p.ID] = *p
	return nil
}

func (m *Memory) GetItemPhoto(_ context.Context, id uuid.UUID) (*models.ItemPhoto, error) {
	defer m.lock()()
	p, ok := m.data.photos[id]
	if !ok {
		return nil, guard.ErrNotFound
	}
	return &p, nil
}

func (m *Memory) DeleteItemPhoto(_ context.Context, id uuid.UUID) error {
	defer m.lock()()
	if _, ok := m.data.photos[id]; !ok {
		return guard.ErrNotFound
	}
	delete(m.data.photos, id)
	return nil
}

// --- Предложения обмена ---

func (m *Memory) CreateOffer(_ context.Context, o *models.TradeOffer) error {
	defer m.lock()()
	m.data.offers[o.ID] = *o
	return nil
}

func (m *Memory) GetOffer(_ context.Context, id uuid.UUID) (*models.TradeOffer, error) {
	defer m.lock()()
	o, ok := m.data.offers[id]
	if !ok {
		return nil, guard.ErrNotFound
	}
	return &o, nil
}

func (m *Memory) GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*models.TradeOffer, error) {
	return m.GetOffer(ctx, id)
}

func (m *Memory) UpdateOfferStatus(_ context.Context, id uuid.UUID, from, to models.TradeOfferStatus, respondedAt time.Time) error {
	defer m.lock()()
	o, ok := m.data.offers[id]
	if !ok || o.Status != from {
		return guard.ErrInvalidState
	}
	o.Status = to
	o.RespondedAt = &respondedAt
	o.UpdatedAt = time.Now()
	m.data.offers[id] = o
	return nil
}

func (m *Memory) HasPendingOffer(_ context.Context, itemID, offeredItemID uuid.UUID) (bool, error) {
	defer m.lock()()
	for _, o := range m.data.offers {
		if o.ItemID == itemID && o.OfferedItemID == offeredItemID && o.Status == models.OfferStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) listOffers(match func(models.TradeOffer) bool, newestFirst bool) []models.TradeOffer {
	var offers []models.TradeOffer
	for _, o := range m.data.offers {
		if match(o) {
			offers = append(offers, o)
		}
	}
	sort.Slice(offers, func(i, j int) bool {
		if newestFirst {
			return offers[i].CreatedAt.After(offers[j].CreatedAt)
		}
		return offers[i].CreatedAt.Before(offers[j].CreatedAt)
	})
	return offers
}

func (m *Memory) ListReceivedOffers(_ context.Context, ownerID uuid.UUID) ([]models.TradeOffer, error) {
	defer m.lock()()
	return m.listOffers(func(o models.TradeOffer) bool { return o.ItemOwnerID == ownerID }, true), nil
}

func (m *Memory) ListMadeOffers(_ context.Context, offererID uuid.UUID) ([]models.TradeOffer, error) {
	defer m.lock()()
	return m.listOffers(func(o models.TradeOffer) bool { return o.OffererID == offererID }, true), nil
}

func (m *Memory) ListCounterOffers(_ context.Context, parentID uuid.UUID) ([]models.TradeOffer, error) {
	defer m.lock()()
	return m.listOffers(func(o models.TradeOffer) bool {
		return o.ParentOfferID != nil && *o.ParentOfferID == parentID
	}, false), nil
}

// --- Обмены ---

func (m *Memory) CreateTrade(_ context.Context, t *models.Trade) error {
	defer m.lock()()
	m.data.trades[t.ID] = *t
	return nil
}

func (m *Memory) GetTrade(_ context.Context, id uuid.UUID) (*models.Trade, error) {
	defer m.lock()()
	t, ok := m.data.trades[id]
	if !ok {
		return nil, guard.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) GetTradeForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return m.GetTrade(ctx, id)
}

func (m *Memory) UpdateTradeStatus(_ context.Context, id uuid.UUID, from, to models.TradeStatus, completedAt *time.Time) error {
	defer m.lock()()
	t, ok := m.data.trades[id]
	if !ok || t.Status != from {
		return guard.ErrInvalidState
	}
	t.Status = to
	t.CompletedAt = completedAt
	t.UpdatedAt = time.Now()
	m.data.trades[id] = t
	return nil
}

func (m *Memory) UpdateTradeDetails(_ context.Context, id uuid.UUID, details TradeDetails) error {
	defer m.lock()()
	t, ok := m.data.trades[id]
	if !ok {
		return guard.ErrNotFound
	}
	if details.MeetingLocation != nil {
		t.MeetingLocation = *details.MeetingLocation
	}
	if details.MeetingTime != nil {
		t.MeetingTime = details.MeetingTime
	}
	if details.Notes != nil {
		t.Notes = *details.Notes
	}
	t.UpdatedAt = time.Now()
	m.data.trades[id] = t
	return nil
}

func (m *Memory) ListActiveTrades(_ context.Context, userID uuid.UUID) ([]models.Trade, error) {
	defer m.lock()()
	var trades []models.Trade
	for _, t := range m.data.trades {
		if !t.IsParticipant(userID) {
			continue
		}
		if t.Status != models.TradeStatusPending && t.Status != models.TradeStatusAccepted {
			continue
		}
		trades = append(trades, t)
	}
	sort.Slice(trades, func(i, j int) bool { return trades[i].CreatedAt.After(trades[j].CreatedAt) })
	return trades, nil
}

// --- Отзывы ---

func (m *Memory) CreateReview(_ context.Context, r *models.Review) error {
	defer m.lock()()
	m.data.reviews[r.ID] = *r
	return nil
}

func (m *Memory) GetReview(_ context.Context, id uuid.UUID) (*models.Review, error) {
	defer m.lock()()
	r, ok := m.data.reviews[id]
	if !ok {
		return nil, guard.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) UpdateReview(_ context.Context, id uuid.UUID, upd ReviewUpdate) error {
	defer m.lock()()
	r, ok := m.data.reviews[id]
	if !ok {
		return guard.ErrNotFound
	}
	if upd.Rating != nil {
		r.Rating = *upd.Rating
	}
	if upd.Title != nil {
		r.Title = *upd.Title
	}
	if upd.Comment != nil {
		r.Comment = *upd.Comment
	}
	if upd.IsPublic != nil {
		r.IsPublic = *upd.IsPublic
	}
	if upd.IsAnonymous != nil {
		r.IsAnonymous = *upd.IsAnonymous
	}
	r.UpdatedAt = time.Now()
	m.data.reviews[id] = r
	return nil
}

func (m *Memory) DeleteReview(_ context.Context, id uuid.UUID) error {
	defer m.lock()()
	if _, ok := m.data.reviews[id]; !ok {
		return guard.ErrNotFound
	}
	delete(m.data.reviews, id)
	return nil
}

func (m *Memory) ListUserReviews(_ context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	defer m.lock()()
	var reviews []models.Review
	for _, r := range m.data.reviews {
		if r.RevieweeID == userID && r.IsPublic {
			reviews = append(reviews, r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })

	if limit <= 0 {
		limit = 20
	}
	if offset >= len(reviews) {
		return nil, nil
	}
	reviews = reviews[offset:]
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}

func (m *Memory) ListTradeReviews(_ context.Context, tradeID uuid.UUID) ([]models.Review, error) {
	defer m.lock()()
	var reviews []models.Review
	for _, r := range m.data.reviews {
		if r.TradeID == tradeID {
			reviews = append(reviews, r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.Before(reviews[j].CreatedAt) })
	return reviews, nil
}

// --- Подписки ---

func (m *Memory) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	defer m.lock()()
	// Повторное оформление замещает прежнюю строку подписки пользователя
	for id, existing := range m.data.subs {
		if existing.UserID == sub.UserID {
			delete(m.data.subs, id)
		}
	}
	m.data.subs[sub.ID] = *sub
	return nil
}

func (m *Memory) GetSubscriptionByUser(_ context.Context, userID uuid.UUID) (*models.Subscription, error) {
	defer m.lock()()
	for _, sub := range m.data.subs {
		if sub.UserID == userID {
			return &sub, nil
		}
	}
	return nil, guard.ErrNotFound
}

func (m *Memory) UpdateSubscriptionStatus(_ context.Context, id uuid.UUID, status models.SubscriptionStatus) error {
	defer m.lock()()
	sub, ok := m.data.subs[id]
	if !ok {
		return guard.ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now()
	m.data.subs[id] = sub
	return nil
}
