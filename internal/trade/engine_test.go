package trade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/storage"
)

func seedUser(t *testing.T, store *storage.Memory, name string) uuid.UUID {
	t.Helper()
	u := &models.User{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		Username:  name,
		FullName:  name,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u.ID
}

func seedItem(t *testing.T, store *storage.Memory, ownerID uuid.UUID, title string) uuid.UUID {
	t.Helper()
	it := &models.Item{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		CategoryID:  uuid.New(),
		Title:       title,
		Description: "test item",
		Condition:   "good",
		ZipCode:     "98101",
		City:        "Seattle",
		State:       "WA",
		Status:      models.ItemStatusActive,
		IsVisible:   true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, store.CreateItem(context.Background(), it))
	return it.ID
}

// negotiationFixture — два пользователя с предметом у каждого
type negotiationFixture struct {
	store  *storage.Memory
	engine *Engine

	owner   uuid.UUID // владелец запрашиваемого предмета
	offerer uuid.UUID // автор предложения
	item    uuid.UUID // предмет owner
	offered uuid.UUID // предмет offerer
}

func newFixture(t *testing.T) *negotiationFixture {
	t.Helper()
	store := storage.NewMemory()
	f := &negotiationFixture{store: store, engine: NewEngine(store)}
	f.owner = seedUser(t, store, "alice")
	f.offerer = seedUser(t, store, "bob")
	f.item = seedItem(t, store, f.owner, "bicycle")
	f.offered = seedItem(t, store, f.offerer, "guitar")
	return f
}

func (f *negotiationFixture) pendingOffer(t *testing.T) *models.TradeOffer {
	t.Helper()
	offer, err := f.engine.CreateOffer(context.Background(), OfferInput{
		ItemID:        f.item,
		OfferedItemID: f.offered,
		Message:       "interested?",
	}, f.offerer)
	require.NoError(t, err)
	return offer
}

func TestCreateOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	offer := f.pendingOffer(t)

	assert.Equal(t, models.OfferStatusPending, offer.Status)
	assert.Equal(t, f.item, offer.ItemID)
	assert.Equal(t, f.offered, offer.OfferedItemID)
	assert.Equal(t, f.offerer, offer.OffererID)
	assert.False(t, offer.IsCounterOffer)
	assert.Nil(t, offer.ParentOfferID)

	// item_owner определяется по записи предмета, а не по входным данным
	assert.Equal(t, f.owner, offer.ItemOwnerID)

	stored, err := f.store.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusPending, stored.Status)
}

func TestCreateOfferValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("requested item missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.CreateOffer(ctx, OfferInput{ItemID: uuid.New(), OfferedItemID: f.offered}, f.offerer)
		assert.ErrorIs(t, err, guard.ErrNotFound)
	})

	t.Run("offered item missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.CreateOffer(ctx, OfferInput{ItemID: f.item, OfferedItemID: uuid.New()}, f.offerer)
		assert.ErrorIs(t, err, guard.ErrNotFound)
	})

	t.Run("offered item not owned by offerer", func(t *testing.T) {
		f := newFixture(t)
		stranger := seedUser(t, f.store, "carol")
		_, err := f.engine.CreateOffer(ctx, OfferInput{ItemID: f.item, OfferedItemID: f.offered}, stranger)
		assert.ErrorIs(t, err, guard.ErrUnauthorized)
	})

	t.Run("offer on own item", func(t *testing.T) {
		f := newFixture(t)
		second := seedItem(t, f.store, f.owner, "skis")
		_, err := f.engine.CreateOffer(ctx, OfferInput{ItemID: f.item, OfferedItemID: second}, f.owner)
		assert.ErrorIs(t, err, guard.ErrValidation)
	})

	t.Run("item for itself", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.CreateOffer(ctx, OfferInput{ItemID: f.offered, OfferedItemID: f.offered}, f.offerer)
		assert.ErrorIs(t, err, guard.ErrValidation)
	})

	t.Run("requested item not active", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.SetItemStatus(ctx, f.item, models.ItemStatusArchived))
		_, err := f.engine.CreateOffer(ctx, OfferInput{ItemID: f.item, OfferedItemID: f.offered}, f.offerer)
		assert.ErrorIs(t, err, guard.ErrInvalidState)
	})

	t.Run("duplicate pending offer", func(t *testing.T) {
		f := newFixture(t)
		f.pendingOffer(t)
		_, err := f.engine.CreateOffer(ctx, OfferInput{ItemID: f.item, OfferedItemID: f.offered}, f.offerer)
		assert.ErrorIs(t, err, guard.ErrInvalidState)
	})
}

func TestAcceptOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)

	trade, err := f.engine.AcceptOffer(ctx, offer.ID, f.owner)
	require.NoError(t, err)

	// Инварианты созданного обмена
	assert.Equal(t, models.TradeStatusAccepted, trade.Status)
	assert.Equal(t, offer.ItemID, trade.Item1ID)
	assert.Equal(t, offer.OfferedItemID, trade.Item2ID)
	assert.Equal(t, offer.ItemOwnerID, trade.User1ID)
	assert.Equal(t, offer.OffererID, trade.User2ID)

	stored, err := f.store.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, stored.Status)
	require.NotNil(t, stored.RespondedAt)
}

func TestAcceptOfferUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)
	stranger := seedUser(t, f.store, "zed")

	_, err := f.engine.AcceptOffer(ctx, offer.ID, stranger)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)

	// Принять может только владелец запрашиваемого предмета, не offerer
	_, err = f.engine.AcceptOffer(ctx, offer.ID, f.offerer)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)

	stored, err := f.store.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusPending, stored.Status)
}

func TestAcceptOfferNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.AcceptOffer(context.Background(), uuid.New(), f.owner)
	assert.ErrorIs(t, err, guard.ErrNotFound)
}

func TestAcceptOfferTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)

	_, err := f.engine.AcceptOffer(ctx, offer.ID, f.owner)
	require.NoError(t, err)

	_, err = f.engine.AcceptOffer(ctx, offer.ID, f.owner)
	assert.ErrorIs(t, err, guard.ErrInvalidState)
}

func TestAcceptOfferConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)

	const attempts = 16
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.AcceptOffer(ctx, offer.ID, f.owner)
		}(i)
	}
	wg.Wait()

	// Ровно один вызов выигрывает, остальные видят уже принятое предложение
	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, guard.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, wins)

	trades, err := f.store.ListActiveTrades(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestRejectOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)

	require.NoError(t, f.engine.RejectOffer(ctx, offer.ID, f.owner))

	stored, err := f.store.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, stored.Status)
	require.NotNil(t, stored.RespondedAt)

	// Отклоненное предложение терминально
	_, err = f.engine.AcceptOffer(ctx, offer.ID, f.owner)
	assert.ErrorIs(t, err, guard.ErrInvalidState)
}

func TestRejectOfferUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)

	err := f.engine.RejectOffer(ctx, offer.ID, f.offerer)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)

	stored, err := f.store.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusPending, stored.Status)
}

func TestWithdrawOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)

	// Отозвать может только автор предложения
	err := f.engine.WithdrawOffer(ctx, offer.ID, f.owner)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)

	require.NoError(t, f.engine.WithdrawOffer(ctx, offer.ID, f.offerer))

	stored, err := f.store.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusWithdrawn, stored.Status)
}

func TestCounterOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.pendingOffer(t)

	// Владелец отвечает контрпредложением: хочет другой предмет Боба
	drums := seedItem(t, f.store, f.offerer, "drums")
	counter, err := f.engine.CounterOffer(ctx, parent.ID, OfferInput{
		ItemID:        drums,
		OfferedItemID: f.item,
		Message:       "how about the drums instead",
	}, f.owner)
	require.NoError(t, err)

	assert.True(t, counter.IsCounterOffer)
	require.NotNil(t, counter.ParentOfferID)
	assert.Equal(t, parent.ID, *counter.ParentOfferID)
	assert.Equal(t, models.OfferStatusPending, counter.Status)
	assert.Equal(t, f.offerer, counter.ItemOwnerID)

	// Родительское предложение закрыто атомарно с созданием контрпредложения
	storedParent, err := f.store.GetOffer(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusCountered, storedParent.Status)

	_, err = f.engine.AcceptOffer(ctx, parent.ID, f.owner)
	assert.ErrorIs(t, err, guard.ErrInvalidState)
}

func TestCounterOfferGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.pendingOffer(t)
	drums := seedItem(t, f.store, f.offerer, "drums")

	t.Run("non-participant", func(t *testing.T) {
		stranger := seedUser(t, f.store, "zed")
		_, err := f.engine.CounterOffer(ctx, parent.ID, OfferInput{ItemID: drums, OfferedItemID: f.item}, stranger)
		assert.ErrorIs(t, err, guard.ErrUnauthorized)
	})

	t.Run("counter on closed offer", func(t *testing.T) {
		require.NoError(t, f.engine.RejectOffer(ctx, parent.ID, f.owner))
		_, err := f.engine.CounterOffer(ctx, parent.ID, OfferInput{ItemID: drums, OfferedItemID: f.item}, f.owner)
		assert.ErrorIs(t, err, guard.ErrInvalidState)
	})
}

func TestListCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.pendingOffer(t)

	drums := seedItem(t, f.store, f.offerer, "drums")
	counter, err := f.engine.CounterOffer(ctx, parent.ID, OfferInput{ItemID: drums, OfferedItemID: f.item}, f.owner)
	require.NoError(t, err)

	counters, err := f.engine.ListCounters(ctx, parent.ID, f.offerer)
	require.NoError(t, err)
	require.Len(t, counters, 1)
	assert.Equal(t, counter.ID, counters[0].ID)

	stranger := seedUser(t, f.store, "zed")
	_, err = f.engine.ListCounters(ctx, parent.ID, stranger)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)
}

func TestOfferLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.pendingOffer(t)

	received, err := f.engine.ReceivedOffers(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, offer.ID, received[0].ID)

	made, err := f.engine.MadeOffers(ctx, f.offerer)
	require.NoError(t, err)
	require.Len(t, made, 1)
	assert.Equal(t, offer.ID, made[0].ID)

	none, err := f.engine.MadeOffers(ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, none)
}
