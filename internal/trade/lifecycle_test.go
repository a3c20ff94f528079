package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
	"github.com/trademe-app/trademe-api/internal/storage"
)

// acceptedTrade — обмен в статусе accepted, готовый к завершению
func acceptedTrade(t *testing.T, f *negotiationFixture) *models.Trade {
	t.Helper()
	offer := f.pendingOffer(t)
	trade, err := f.engine.AcceptOffer(context.Background(), offer.ID, f.owner)
	require.NoError(t, err)
	return trade
}

func TestCompleteTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)

	require.NoError(t, lc.Complete(ctx, trade.ID, f.offerer))

	stored, err := f.store.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	// Оба предмета выведены из оборота вместе с завершением
	for _, itemID := range []uuid.UUID{trade.Item1ID, trade.Item2ID} {
		it, err := f.store.GetItem(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemStatusTraded, it.Status)
	}
}

func TestCompleteTradeKeepsItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, false)
	trade := acceptedTrade(t, f)

	require.NoError(t, lc.Complete(ctx, trade.ID, f.owner))

	it, err := f.store.GetItem(ctx, trade.Item1ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusActive, it.Status)
}

func TestCompleteTradeGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)

	t.Run("non-participant", func(t *testing.T) {
		stranger := seedUser(t, f.store, "zed")
		err := lc.Complete(ctx, trade.ID, stranger)
		assert.ErrorIs(t, err, guard.ErrUnauthorized)

		stored, err := f.store.GetTrade(ctx, trade.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TradeStatusAccepted, stored.Status)
	})

	t.Run("missing trade", func(t *testing.T) {
		err := lc.Complete(ctx, uuid.New(), f.owner)
		assert.ErrorIs(t, err, guard.ErrNotFound)
	})

	t.Run("double complete", func(t *testing.T) {
		require.NoError(t, lc.Complete(ctx, trade.ID, f.owner))
		err := lc.Complete(ctx, trade.ID, f.owner)
		assert.ErrorIs(t, err, guard.ErrInvalidState)
	})
}

func TestCancelTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)

	require.NoError(t, lc.Cancel(ctx, trade.ID, f.offerer))

	stored, err := f.store.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCancelled, stored.Status)

	// Отмененный обмен нельзя завершить или отменить повторно
	assert.ErrorIs(t, lc.Complete(ctx, trade.ID, f.owner), guard.ErrInvalidState)
	assert.ErrorIs(t, lc.Cancel(ctx, trade.ID, f.owner), guard.ErrInvalidState)
}

func TestCancelTradeUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)
	stranger := seedUser(t, f.store, "zed")

	assert.ErrorIs(t, lc.Cancel(ctx, trade.ID, stranger), guard.ErrUnauthorized)
}

func TestUpdateTradeDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)

	location := "Cal Anderson Park"
	when := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	require.NoError(t, lc.UpdateDetails(ctx, trade.ID, f.owner, storage.TradeDetails{
		MeetingLocation: &location,
		MeetingTime:     &when,
	}))

	stored, err := f.store.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, location, stored.MeetingLocation)
	require.NotNil(t, stored.MeetingTime)
	assert.True(t, when.Equal(*stored.MeetingTime))

	// Частичное обновление не затирает прежние поля
	notes := "bring the spare lock"
	require.NoError(t, lc.UpdateDetails(ctx, trade.ID, f.offerer, storage.TradeDetails{Notes: &notes}))

	stored, err = f.store.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, location, stored.MeetingLocation)
	assert.Equal(t, notes, stored.Notes)
}

func TestUpdateTradeDetailsGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)
	notes := "n/a"

	stranger := seedUser(t, f.store, "zed")
	err := lc.UpdateDetails(ctx, trade.ID, stranger, storage.TradeDetails{Notes: &notes})
	assert.ErrorIs(t, err, guard.ErrUnauthorized)

	require.NoError(t, lc.Complete(ctx, trade.ID, f.owner))
	err = lc.UpdateDetails(ctx, trade.ID, f.owner, storage.TradeDetails{Notes: &notes})
	assert.ErrorIs(t, err, guard.ErrInvalidState)
}

func TestGetTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)

	got, err := lc.Get(ctx, trade.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, trade.ID, got.ID)

	stranger := seedUser(t, f.store, "zed")
	_, err = lc.Get(ctx, trade.ID, stranger)
	assert.ErrorIs(t, err, guard.ErrUnauthorized)
}

func TestActiveTrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lc := NewLifecycle(f.store, true)
	trade := acceptedTrade(t, f)

	active, err := lc.ActiveTrades(ctx, f.offerer)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, trade.ID, active[0].ID)

	require.NoError(t, lc.Complete(ctx, trade.ID, f.owner))

	active, err = lc.ActiveTrades(ctx, f.offerer)
	require.NoError(t, err)
	assert.Empty(t, active)
}
