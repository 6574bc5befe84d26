package userdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrade-io/papertrade/internal/common"
	"github.com/papertrade-io/papertrade/internal/interfaces"
	"github.com/papertrade-io/papertrade/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{
		ID:             "u1",
		Name:           "Alice",
		Email:          "alice@example.com",
		PasswordHash:   "$2a$10$hash",
		VirtualBalance: 100000.0,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, store.SaveUser(ctx, user))

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 100000.0, got.VirtualBalance)

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
}

func TestGetUserNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = store.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestSaveUserPreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Now().Add(-24 * time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com", CreatedAt: created}
	require.NoError(t, store.SaveUser(ctx, user))

	user.Name = "Alice Updated"
	user.CreatedAt = time.Time{}
	require.NoError(t, store.SaveUser(ctx, user))

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", got.Name)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
}

func TestHoldingsPerUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u1 := &models.User{ID: "u1", Email: "a@example.com", VirtualBalance: 1000}
	u2 := &models.User{ID: "u2", Email: "b@example.com", VirtualBalance: 1000}
	require.NoError(t, store.SaveUser(ctx, u1))
	require.NoError(t, store.SaveUser(ctx, u2))

	require.NoError(t, store.CommitTrade(ctx, u1, &models.Holding{UserID: "u1", Symbol: "MSFT", Quantity: 2, AvgBuyPrice: 300}, false))
	require.NoError(t, store.CommitTrade(ctx, u1, &models.Holding{UserID: "u1", Symbol: "AAPL", Quantity: 10, AvgBuyPrice: 150}, false))
	require.NoError(t, store.CommitTrade(ctx, u2, &models.Holding{UserID: "u2", Symbol: "TSLA", Quantity: 1, AvgBuyPrice: 250}, false))

	holdings, err := store.ListHoldings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	// Sorted by symbol.
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "MSFT", holdings[1].Symbol)

	other, err := store.ListHoldings(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "TSLA", other[0].Symbol)
}

func TestCommitTradeWritesBalanceAndHolding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Email: "a@example.com", VirtualBalance: 100000}
	require.NoError(t, store.SaveUser(ctx, user))

	user.VirtualBalance = 98500
	holding := &models.Holding{UserID: "u1", Symbol: "AAPL", Quantity: 10, AvgBuyPrice: 150}
	require.NoError(t, store.CommitTrade(ctx, user, holding, false))

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 98500.0, got.VirtualBalance)

	h, err := store.GetHolding(ctx, "u1", "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 10.0, h.Quantity)
	assert.Equal(t, 150.0, h.AvgBuyPrice)
}

func TestCommitTradeRemoveHolding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Email: "a@example.com", VirtualBalance: 100000}
	require.NoError(t, store.SaveUser(ctx, user))

	holding := &models.Holding{UserID: "u1", Symbol: "AAPL", Quantity: 10, AvgBuyPrice: 150}
	require.NoError(t, store.CommitTrade(ctx, user, holding, false))

	user.VirtualBalance = 101500
	holding.Quantity = 0
	require.NoError(t, store.CommitTrade(ctx, user, holding, true))

	_, err := store.GetHolding(ctx, "u1", "AAPL")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 101500.0, got.VirtualBalance)
}

func TestHoldingSymbolsDoNotCollide(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Email: "a@example.com"}
	require.NoError(t, store.SaveUser(ctx, user))

	// Keys must separate user and symbol unambiguously.
	require.NoError(t, store.CommitTrade(ctx, user, &models.Holding{UserID: "u1", Symbol: "A", Quantity: 1, AvgBuyPrice: 10}, false))

	_, err := store.GetHolding(ctx, "u1", "AA")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(common.NewSilentLogger(), dir)
	require.NoError(t, err)

	user := &models.User{ID: "u1", Email: "a@example.com", VirtualBalance: 5000}
	require.NoError(t, store.SaveUser(ctx, user))
	require.NoError(t, store.Close())

	reopened, err := NewStore(common.NewSilentLogger(), dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got.VirtualBalance)
}
