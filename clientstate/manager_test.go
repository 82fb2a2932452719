package clientstate

import (
	"context"
	"testing"

	"boardbank/models"
	"boardbank/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveLastGame(ctx context.Context, uid string, lastGame *LastGame) error {
	args := m.Called(ctx, uid, lastGame)
	return args.Error(0)
}

func (m *MockStore) LastGame(ctx context.Context, uid string) (*LastGame, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LastGame), args.Error(1)
}

func (m *MockStore) ClearLastGame(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockStore) SaveNickname(ctx context.Context, uid, nickname string) error {
	args := m.Called(ctx, uid, nickname)
	return args.Error(0)
}

func (m *MockStore) Nickname(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func (m *MockStore) AddRecentGame(ctx context.Context, uid, gameID string) error {
	args := m.Called(ctx, uid, gameID)
	return args.Error(0)
}

func (m *MockStore) RemoveRecentGame(ctx context.Context, uid, gameID string) error {
	args := m.Called(ctx, uid, gameID)
	return args.Error(0)
}

func (m *MockStore) RecentGames(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockGameDirectory struct {
	mock.Mock
}

func (m *MockGameDirectory) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func TestManager_Resume(t *testing.T) {
	ctx := context.Background()

	t.Run("valid last game resumes", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		remembered := &LastGame{GameID: "RES001", PlayerID: "p1", Nickname: "Alice"}
		game := &models.Game{ID: "RES001", Members: []string{"uid-a", "uid-b"}}

		mockStore.On("LastGame", ctx, "uid-a").Return(remembered, nil)
		mockGames.On("GetGame", ctx, "RES001").Return(game, nil)

		result, err := manager.Resume(ctx, "uid-a")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "RES001", result.GameID)
		assert.Equal(t, "Alice", result.Nickname)

		mockStore.AssertNotCalled(t, "ClearLastGame", ctx, "uid-a")
	})

	t.Run("nothing remembered", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		mockStore.On("LastGame", ctx, "uid-a").Return(nil, nil)

		result, err := manager.Resume(ctx, "uid-a")
		require.NoError(t, err)
		assert.Nil(t, result)

		mockGames.AssertNotCalled(t, "GetGame", ctx, mock.Anything)
	})

	t.Run("game vanished clears the record", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		remembered := &LastGame{GameID: "RES002", PlayerID: "p1", Nickname: "Alice"}

		mockStore.On("LastGame", ctx, "uid-a").Return(remembered, nil)
		mockGames.On("GetGame", ctx, "RES002").Return(nil, service.ErrGameNotFound("RES002"))
		mockStore.On("ClearLastGame", ctx, "uid-a").Return(nil)
		mockStore.On("RemoveRecentGame", ctx, "uid-a", "RES002").Return(nil)

		result, err := manager.Resume(ctx, "uid-a")
		require.NoError(t, err)
		assert.Nil(t, result)

		mockStore.AssertExpectations(t)
	})

	t.Run("no longer a member clears the record", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		remembered := &LastGame{GameID: "RES003", PlayerID: "p1", Nickname: "Alice"}
		game := &models.Game{ID: "RES003", Members: []string{"uid-b", "uid-c"}}

		mockStore.On("LastGame", ctx, "uid-a").Return(remembered, nil)
		mockGames.On("GetGame", ctx, "RES003").Return(game, nil)
		mockStore.On("ClearLastGame", ctx, "uid-a").Return(nil)
		mockStore.On("RemoveRecentGame", ctx, "uid-a", "RES003").Return(nil)

		result, err := manager.Resume(ctx, "uid-a")
		require.NoError(t, err)
		assert.Nil(t, result)

		mockStore.AssertExpectations(t)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		remembered := &LastGame{GameID: "RES004", PlayerID: "p1"}

		mockStore.On("LastGame", ctx, "uid-a").Return(remembered, nil)
		mockGames.On("GetGame", ctx, "RES004").Return(nil, assert.AnError)

		_, err := manager.Resume(ctx, "uid-a")
		require.Error(t, err)

		mockStore.AssertNotCalled(t, "ClearLastGame", ctx, "uid-a")
	})
}

func TestManager_RememberGame(t *testing.T) {
	ctx := context.Background()

	t.Run("saves descriptor, recents and nickname", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		mockStore.On("SaveLastGame", ctx, "uid-a", &LastGame{
			GameID:   "REM001",
			PlayerID: "p1",
			Nickname: "Alice",
		}).Return(nil)
		mockStore.On("AddRecentGame", ctx, "uid-a", "REM001").Return(nil)
		mockStore.On("SaveNickname", ctx, "uid-a", "Alice").Return(nil)

		err := manager.RememberGame(ctx, "uid-a", "REM001", "p1", "Alice")
		require.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("empty nickname is not saved", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		mockStore.On("SaveLastGame", ctx, "uid-a", mock.AnythingOfType("*clientstate.LastGame")).Return(nil)
		mockStore.On("AddRecentGame", ctx, "uid-a", "REM002").Return(nil)

		err := manager.RememberGame(ctx, "uid-a", "REM002", "p1", "")
		require.NoError(t, err)

		mockStore.AssertNotCalled(t, "SaveNickname", ctx, "uid-a", "")
	})
}

func TestManager_ForgetGame(t *testing.T) {
	ctx := context.Background()

	t.Run("clears matching last game", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		remembered := &LastGame{GameID: "FGT001", PlayerID: "p1"}

		mockStore.On("RemoveRecentGame", ctx, "uid-a", "FGT001").Return(nil)
		mockStore.On("LastGame", ctx, "uid-a").Return(remembered, nil)
		mockStore.On("ClearLastGame", ctx, "uid-a").Return(nil)

		err := manager.ForgetGame(ctx, "uid-a", "FGT001")
		require.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("keeps unrelated last game", func(t *testing.T) {
		mockStore := new(MockStore)
		mockGames := new(MockGameDirectory)
		manager := NewManager(mockStore, mockGames)

		remembered := &LastGame{GameID: "OTHER1", PlayerID: "p2"}

		mockStore.On("RemoveRecentGame", ctx, "uid-a", "FGT002").Return(nil)
		mockStore.On("LastGame", ctx, "uid-a").Return(remembered, nil)

		err := manager.ForgetGame(ctx, "uid-a", "FGT002")
		require.NoError(t, err)

		mockStore.AssertNotCalled(t, "ClearLastGame", ctx, "uid-a")
	})
}
