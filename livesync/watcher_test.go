package livesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"boardbank/events"
	"boardbank/models"
	"boardbank/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore is an in-memory GameReader/LogReader whose state tests
// mutate between emits.
type stubStore struct {
	mu           sync.Mutex
	game         *models.Game
	players      []*models.Player
	transactions []*models.Transaction
	failNext     error
}

func (s *stubStore) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	if s.game == nil || s.game.ID != gameID {
		return nil, service.ErrGameNotFound(gameID)
	}
	return s.game, nil
}

func (s *stubStore) ListPlayers(ctx context.Context, gameID string) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return s.players, nil
}

func (s *stubStore) Transactions(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return s.transactions, nil
}

func (s *stubStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *stubStore) set(fn func(*stubStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func newStubStore() *stubStore {
	return &stubStore{
		game: &models.Game{
			ID:          "WATCH1",
			OwnerID:     "uid-a",
			BankBalance: 10000,
			Members:     []string{"uid-a"},
		},
		players: []*models.Player{
			{ID: "p1", GameID: "WATCH1", UID: "uid-a", Name: "Alice", Balance: 1500},
		},
	}
}

func recvPlayers(t *testing.T, sub *PlayersSubscription) []*models.Player {
	t.Helper()
	select {
	case players := <-sub.Updates():
		return players
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for players update")
		return nil
	}
}

func recvGame(t *testing.T, sub *GameSubscription) *models.Game {
	t.Helper()
	select {
	case game := <-sub.Updates():
		return game
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for game update")
		return nil
	}
}

func TestWatcher_WatchPlayers(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	sub, err := watcher.WatchPlayers(ctx, "WATCH1")
	require.NoError(t, err)
	defer sub.Cancel()

	// Initial snapshot arrives without any event
	players := recvPlayers(t, sub)
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].Name)

	// A committed join triggers a fresh snapshot
	store.set(func(s *stubStore) {
		s.players = append(s.players, &models.Player{ID: "p2", GameID: "WATCH1", UID: "uid-b", Name: "Bob", Balance: 1500})
	})
	bus.Emit(ctx, events.PlayerJoinedEvent{GameID: "WATCH1", PlayerID: "p2", UID: "uid-b", Name: "Bob"})

	players = recvPlayers(t, sub)
	require.Len(t, players, 2)
	assert.Equal(t, "Bob", players[1].Name)
}

func TestWatcher_IgnoresOtherGames(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	sub, err := watcher.WatchPlayers(ctx, "WATCH1")
	require.NoError(t, err)
	defer sub.Cancel()

	recvPlayers(t, sub)

	bus.Emit(ctx, events.PlayerJoinedEvent{GameID: "OTHER1", PlayerID: "px", UID: "uid-x"})

	select {
	case <-sub.Updates():
		t.Fatal("received update for an unrelated game")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_WatchGame(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	sub, err := watcher.WatchGame(ctx, "WATCH1")
	require.NoError(t, err)
	defer sub.Cancel()

	game := recvGame(t, sub)
	require.NotNil(t, game)
	assert.Equal(t, int64(10000), game.BankBalance)

	store.set(func(s *stubStore) {
		s.game = &models.Game{ID: "WATCH1", OwnerID: "uid-a", BankBalance: 9500, PotBalance: 500, Members: []string{"uid-a"}}
	})
	bus.Emit(ctx, events.GameBalanceChangeEvent{GameID: "WATCH1", BankBalance: 9500, PotBalance: 500})

	game = recvGame(t, sub)
	require.NotNil(t, game)
	assert.Equal(t, int64(9500), game.BankBalance)
	assert.Equal(t, int64(500), game.PotBalance)
}

func TestWatcher_WatchGame_DeletedPushesNil(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	sub, err := watcher.WatchGame(ctx, "WATCH1")
	require.NoError(t, err)

	require.NotNil(t, recvGame(t, sub))

	store.set(func(s *stubStore) { s.game = nil })
	bus.Emit(ctx, events.GameDeletedEvent{GameID: "WATCH1"})

	assert.Nil(t, recvGame(t, sub))
}

func TestWatcher_WatchTransactions(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	sub, err := watcher.WatchTransactions(ctx, "WATCH1")
	require.NoError(t, err)
	defer sub.Cancel()

	select {
	case records := <-sub.Updates():
		assert.Empty(t, records)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial log snapshot")
	}

	from := "p1"
	to := "bank"
	store.set(func(s *stubStore) {
		s.transactions = []*models.Transaction{
			{ID: 1, GameID: "WATCH1", Type: models.TransactionTypePayBank, From: &from, To: &to, Amount: 100},
		}
	})
	bus.Emit(ctx, events.TransactionLoggedEvent{GameID: "WATCH1", TransactionID: 1, TransactionType: models.TransactionTypePayBank, Amount: 100})

	select {
	case records := <-sub.Updates():
		require.Len(t, records, 1)
		assert.Equal(t, models.TransactionTypePayBank, records[0].Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for log update")
	}
}

func TestWatcher_ErrorsPropagateWithoutKillingTheFeed(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	sub, err := watcher.WatchPlayers(ctx, "WATCH1")
	require.NoError(t, err)
	defer sub.Cancel()

	recvPlayers(t, sub)

	queryErr := errors.New("store unavailable")
	store.set(func(s *stubStore) { s.failNext = queryErr })
	bus.Emit(ctx, events.PlayerBalanceChangeEvent{GameID: "WATCH1", PlayerID: "p1", NewBalance: 1400})

	select {
	case err := <-sub.Errors():
		assert.ErrorIs(t, err, queryErr)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed error")
	}

	// The next committed change still produces a snapshot
	bus.Emit(ctx, events.PlayerBalanceChangeEvent{GameID: "WATCH1", PlayerID: "p1", NewBalance: 1400})
	recvPlayers(t, sub)
}

func TestWatcher_CancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	sub, err := watcher.WatchPlayers(ctx, "WATCH1")
	require.NoError(t, err)

	recvPlayers(t, sub)
	sub.Cancel()

	bus.Emit(ctx, events.PlayerJoinedEvent{GameID: "WATCH1", PlayerID: "p2", UID: "uid-b"})

	select {
	case _, ok := <-sub.Updates():
		if ok {
			t.Fatal("received update after cancel")
		}
	case <-time.After(100 * time.Millisecond):
	}

	// Cancel twice is harmless
	sub.Cancel()
}

func TestWatcher_UnknownGameRejected(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	bus := events.NewBus()
	watcher := NewWatcher(store, store, bus)

	_, err := watcher.WatchPlayers(ctx, "NOPE01")
	require.Error(t, err)

	domainErr, ok := service.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeGameNotFound, domainErr.Code)
}
