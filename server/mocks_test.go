package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"boardbank/models"
)

// MockGameService is a mock implementation of service.GameService
type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) CreateGame(ctx context.Context, ownerUID, ownerName string) (string, error) {
	args := m.Called(ctx, ownerUID, ownerName)
	return args.String(0), args.Error(1)
}

func (m *MockGameService) JoinGame(ctx context.Context, gameID, uid, name string) error {
	args := m.Called(ctx, gameID, uid, name)
	return args.Error(0)
}

func (m *MockGameService) LeaveGame(ctx context.Context, gameID, uid string) error {
	args := m.Called(ctx, gameID, uid)
	return args.Error(0)
}

func (m *MockGameService) ListGamesForPlayer(ctx context.Context, uid string) ([]*models.GameSummary, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameSummary), args.Error(1)
}

func (m *MockGameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameService) ListPlayers(ctx context.Context, gameID string) ([]*models.Player, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

// MockLedgerService is a mock implementation of service.LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Transfer(ctx context.Context, gameID, fromPlayerID, toPlayerID string, amount int64) (*models.Transaction, error) {
	args := m.Called(ctx, gameID, fromPlayerID, toPlayerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerService) PayToBank(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error) {
	args := m.Called(ctx, gameID, playerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerService) TakeFromBank(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error) {
	args := m.Called(ctx, gameID, playerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerService) PayToPot(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error) {
	args := m.Called(ctx, gameID, playerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerService) TakeFromPot(ctx context.Context, gameID, playerID string) (*models.Transaction, error) {
	args := m.Called(ctx, gameID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerService) GiveStartBonus(ctx context.Context, gameID, playerID string, bonus int64) (*models.Transaction, error) {
	args := m.Called(ctx, gameID, playerID, bonus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerService) Transactions(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, gameID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}
