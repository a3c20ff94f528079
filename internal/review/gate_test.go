package review

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

type gateFixture struct {
	store *storage.Memory
	gate  *Gate

	user1 uuid.UUID
	user2 uuid.UUID
	trade *models.Trade
}

// newGateFixture готовит завершенный обмен между двумя пользователями
func newGateFixture(t *testing.T, status models.TradeStatus) *gateFixture {
	t.Helper()
	store := storage.NewMemory()
	f := &gateFixture{store: store, gate: NewGate(store)}

	ctx := context.Background()
	f.user1 = uuid.New()
	f.user2 = uuid.New()

	now := time.Now()
	f.trade = &models.Trade{
		ID:        uuid.New(),
		Item1ID:   uuid.New(),
		Item2ID:   uuid.New(),
		User1ID:   f.user1,
		User2ID:   f.user2,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == models.TradeStatusCompleted {
		f.trade.CompletedAt = &now
	}
	require.NoError(t, store.CreateTrade(ctx, f.trade))
	return f
}

func (f *gateFixture) input() CreateInput {
	return CreateInput{
		TradeID:    f.trade.ID,
		RevieweeID: f.user2,
		Rating:     5,
		Title:      "great trade",
		Comment:    "smooth handoff, item as described",
		IsPublic:   true,
	}
}

func TestCreateReview(t *testing.T) {
	f := newGateFixture(t, models.TradeStatusCompleted)
	ctx := context.Background()

	rev, err := f.gate.Create(ctx, f.input(), f.user1)
	require.NoError(t, err)
	assert.Equal(t, f.user1, rev.ReviewerID)
	assert.Equal(t, f.user2, rev.RevieweeID)
	assert.Equal(t, f.trade.ID, rev.TradeID)
	assert.Equal(t, 5, rev.Rating)

	reviews, err := f.gate.TradeReviews(ctx, f.trade.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestCreateReviewValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("rating out of range", func(t *testing.T) {
		f := newGateFixture(t, models.TradeStatusCompleted)
		for _, rating := range []int{0, 6, -1} {
			in := f.input()
			in.Rating = rating
			_, err := f.gate.Create(ctx, in, f.user1)
			assert.ErrorIs(t, err, guard.ErrValidation)
		}

		// Ничего не сохранено
		reviews, err := f.gate.TradeReviews(ctx, f.trade.ID)
		require.NoError(t, err)
		assert.Empty(t, reviews)
	})

	t.Run("title required", func(t *testing.T) {
		f := newGateFixture(t, models.TradeStatusCompleted)
		in := f.input()
		in.Title = ""
		_, err := f.gate.Create(ctx, in, f.user1)
		assert.ErrorIs(t, err, guard.ErrValidation)
	})

	t.Run("self review", func(t *testing.T) {
		f := newGateFixture(t, models.TradeStatusCompleted)
		in := f.input()
		in.RevieweeID = f.user1
		_, err := f.gate.Create(ctx, in, f.user1)
		assert.ErrorIs(t, err, guard.ErrValidation)
	})

	t.Run("reviewee outside trade", func(t *testing.T) {
		f := newGateFixture(t, models.TradeStatusCompleted)
		in := f.input()
		in.RevieweeID = uuid.New()
		_, err := f.gate.Create(ctx, in, f.user1)
		assert.ErrorIs(t, err, guard.ErrValidation)
	})
}

func TestCreateReviewRequiresCompletedTrade(t *testing.T) {
	ctx := context.Background()
	for _, status := range []models.TradeStatus{
		models.TradeStatusPending,
		models.TradeStatusAccepted,
		models.TradeStatusCancelled,
	} {
		f := newGateFixture(t, status)
		_, err := f.gate.Create(ctx, f.input(), f.user1)
		assert.ErrorIs(t, err, guard.ErrInvalidState, "status %s", status)
	}
}

func TestCreateReviewGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("missing trade", func(t *testing.T) {
		f := newGateFixture(t, models.TradeStatusCompleted)
		in := f.input()
		in.TradeID = uuid.New()
		_, err := f.gate.Create(ctx, in, f.user1)
		assert.ErrorIs(t, err, guard.ErrNotFound)
	})

	t.Run("non-participant reviewer", func(t *testing.T) {
		f := newGateFixture(t, models.TradeStatusCompleted)
		_, err := f.gate.Create(ctx, f.input(), uuid.New())
		assert.ErrorIs(t, err, guard.ErrUnauthorized)
	})
}

func TestUpdateReview(t *testing.T) {
	f := newGateFixture(t, models.TradeStatusCompleted)
	ctx := context.Background()

	rev, err := f.gate.Create(ctx, f.input(), f.user1)
	require.NoError(t, err)

	rating := 3
	comment := "item had a scratch I missed at handoff"
	require.NoError(t, f.gate.Update(ctx, rev.ID, f.user1, storage.ReviewUpdate{
		Rating:  &rating,
		Comment: &comment,
	}))

	stored, err := f.gate.Get(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Rating)
	assert.Equal(t, comment, stored.Comment)
	// Нетронутые поля сохраняются
	assert.Equal(t, "great trade", stored.Title)
}

func TestUpdateReviewGuards(t *testing.T) {
	f := newGateFixture(t, models.TradeStatusCompleted)
	ctx := context.Background()

	rev, err := f.gate.Create(ctx, f.input(), f.user1)
	require.NoError(t, err)

	rating := 6
	assert.ErrorIs(t, f.gate.Update(ctx, rev.ID, f.user1, storage.ReviewUpdate{Rating: &rating}), guard.ErrValidation)

	rating = 4
	// Редактировать может только автор, даже второй участник обмена не может
	assert.ErrorIs(t, f.gate.Update(ctx, rev.ID, f.user2, storage.ReviewUpdate{Rating: &rating}), guard.ErrUnauthorized)
	assert.ErrorIs(t, f.gate.Update(ctx, uuid.New(), f.user1, storage.ReviewUpdate{Rating: &rating}), guard.ErrNotFound)
}

func TestDeleteReview(t *testing.T) {
	f := newGateFixture(t, models.TradeStatusCompleted)
	ctx := context.Background()

	rev, err := f.gate.Create(ctx, f.input(), f.user1)
	require.NoError(t, err)

	assert.ErrorIs(t, f.gate.Delete(ctx, rev.ID, f.user2), guard.ErrUnauthorized)
	require.NoError(t, f.gate.Delete(ctx, rev.ID, f.user1))

	_, err = f.gate.Get(ctx, rev.ID)
	assert.ErrorIs(t, err, guard.ErrNotFound)
}

func TestUserReviews(t *testing.T) {
	f := newGateFixture(t, models.TradeStatusCompleted)
	ctx := context.Background()

	public, err := f.gate.Create(ctx, f.input(), f.user1)
	require.NoError(t, err)

	hidden := f.input()
	hidden.RevieweeID = f.user1
	hidden.IsPublic = false
	hidden.Title = "fine"
	_, err = f.gate.Create(ctx, hidden, f.user2)
	require.NoError(t, err)

	// В публичной выдаче только публичные отзывы об адресате
	reviews, err := f.gate.UserReviews(ctx, f.user2, 10, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, public.ID, reviews[0].ID)

	reviews, err = f.gate.UserReviews(ctx, f.user1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
