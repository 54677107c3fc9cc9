package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTrade(id string) models.Trade {
	return models.Trade{
		ID:         id,
		Coin:       "bitcoin",
		EntryPrice: 50000,
		Quantity:   0.5,
		Fees:       0.1,
		Date:       "2025-01-10",
		Time:       "09:30",
		Notes:      "dca buy",
		Status:     models.TradeOpen,
		ExitPlans: []models.ExitPlan{
			{ID: id + "-p1", TargetPrice: 60000, Quantity: 0.25, StopLoss: 45000, Status: models.PlanPending, CreatedAt: time.Now()},
			{ID: id + "-p2", TargetPrice: 70000, Quantity: 0.25, Status: models.PlanPending, CreatedAt: time.Now()},
		},
		CreatedAt: time.Now(),
	}
}

func TestTradeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := sampleTrade("t1")
	require.NoError(t, store.SaveTrade(ctx, "u1", trade))

	got, err := store.GetTrade(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", got.Coin)
	assert.Equal(t, 50000.0, got.EntryPrice)
	assert.Equal(t, "dca buy", got.Notes)
	assert.Nil(t, got.ClosedAt)

	// Plans come back in insertion order.
	require.Len(t, got.ExitPlans, 2)
	assert.Equal(t, "t1-p1", got.ExitPlans[0].ID)
	assert.Equal(t, "t1-p2", got.ExitPlans[1].ID)
}

func TestGetTradeScopedToUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTrade(ctx, "u1", sampleTrade("t1")))

	_, err := store.GetTrade(ctx, "u2", "t1")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestUpdateTradeReplacesPlansWholesale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trade := sampleTrade("t1")
	require.NoError(t, store.SaveTrade(ctx, "u1", trade))

	trade.Status = models.TradeWon
	trade.SelectedPlanID = "t1-p1"
	trade.ClosedAt = &models.ClosedAt{Date: "2025-02-01", Time: "12:00", Price: 61000}
	trade.ExitPlans[0].Status = models.PlanExecuted
	trade.ExitPlans[1].Status = models.PlanCancelled
	require.NoError(t, store.UpdateTrade(ctx, "u1", trade))

	got, err := store.GetTrade(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TradeWon, got.Status)
	assert.Equal(t, "t1-p1", got.SelectedPlanID)
	require.NotNil(t, got.ClosedAt)
	assert.Equal(t, 61000.0, got.ClosedAt.Price)
	assert.Equal(t, models.PlanExecuted, got.ExitPlans[0].Status)
	assert.Equal(t, models.PlanCancelled, got.ExitPlans[1].Status)
}

func TestUpdateTradeNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateTrade(context.Background(), "u1", sampleTrade("missing"))
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestDeleteTrade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTrade(ctx, "u1", sampleTrade("t1")))
	require.NoError(t, store.DeleteTrade(ctx, "u1", "t1"))

	_, err := store.GetTrade(ctx, "u1", "t1")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)

	// Plans are gone with the trade; re-saving the same ids must not conflict.
	require.NoError(t, store.SaveTrade(ctx, "u1", sampleTrade("t1")))

	// Deleting twice is a no-op.
	require.NoError(t, store.DeleteTrade(ctx, "u1", "t1"))
	require.NoError(t, store.DeleteTrade(ctx, "u1", "t1"))
}

func TestListTradesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := sampleTrade("t1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := sampleTrade("t2")
	newer.CreatedAt = time.Now()
	require.NoError(t, store.SaveTrade(ctx, "u1", older))
	require.NoError(t, store.SaveTrade(ctx, "u1", newer))

	trades, err := store.ListTrades(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "t2", trades[0].ID)
	assert.Equal(t, "t1", trades[1].ID)
}

func TestIdeas(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	idea := models.IdeaNote{ID: "i1", Content: "watch the halving", Color: "yellow", PositionX: 10, PositionY: 20, CreatedAt: time.Now()}
	require.NoError(t, store.SaveIdea(ctx, "u1", idea))

	idea.Content = "watch the halving closely"
	idea.PositionX = 50
	require.NoError(t, store.UpdateIdea(ctx, "u1", idea))

	ideas, err := store.ListIdeas(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "watch the halving closely", ideas[0].Content)
	assert.Equal(t, 50.0, ideas[0].PositionX)

	assert.ErrorIs(t, store.UpdateIdea(ctx, "u1", models.IdeaNote{ID: "missing"}), apperrors.ErrDataNotFound)
	require.NoError(t, store.DeleteIdea(ctx, "u1", "i1"))
}

func TestSignals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	signal := models.Signal{
		ID: "s1", Coin: "ethereum", Type: models.SignalLong,
		EntryPrice: 2000, TargetPrice: 2500, StopLoss: 1800,
		Risk: models.RiskMedium, Status: models.SignalActive, CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveSignal(ctx, "u1", signal))
	require.NoError(t, store.UpdateSignalStatus(ctx, "u1", "s1", models.SignalCompleted))

	signals, err := store.ListSignals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, models.SignalCompleted, signals[0].Status)

	assert.ErrorIs(t, store.UpdateSignalStatus(ctx, "u1", "missing", models.SignalActive), apperrors.ErrDataNotFound)
}

func TestMessagesLimitAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		msg := models.Message{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Sender:    "alice",
			Content:   "message",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.SaveMessage(ctx, msg))
	}

	// The newest 3, returned oldest to newest.
	msgs, err := store.ListMessages(ctx, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "c", msgs[0].ID)
	assert.Equal(t, "e", msgs[2].ID)
}

func TestUsersAndSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.User{ID: "u1", Email: "alice@example.com", DisplayName: "Alice", PasswordHash: "hash", PasswordSalt: "salt", CreatedAt: time.Now()}
	require.NoError(t, store.CreateUser(ctx, user))

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)

	session := models.Session{Token: "tok", UserID: "u1", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.CreateSession(ctx, session))

	got, err := store.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, store.DeleteSession(ctx, "tok"))
	_, err = store.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)
}

func TestDeleteExpiredSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.User{ID: "u1", Email: "a@b.c", PasswordHash: "h", PasswordSalt: "s", CreatedAt: time.Now()}
	require.NoError(t, store.CreateUser(ctx, user))

	expired := models.Session{Token: "old", UserID: "u1", CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour)}
	live := models.Session{Token: "new", UserID: "u1", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.CreateSession(ctx, expired))
	require.NoError(t, store.CreateSession(ctx, live))

	require.NoError(t, store.DeleteExpiredSessions(ctx))

	_, err := store.GetSession(ctx, "old")
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)
	_, err = store.GetSession(ctx, "new")
	assert.NoError(t, err)
}
