package service

import (
	"context"

	"boardbank/events"
	"boardbank/models"

	"github.com/stretchr/testify/mock"
)

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) AddBankBalance(ctx context.Context, gameID string, delta int64) error {
	args := m.Called(ctx, gameID, delta)
	return args.Error(0)
}

func (m *MockGameRepository) DeductBankBalance(ctx context.Context, gameID string, amount int64) error {
	args := m.Called(ctx, gameID, amount)
	return args.Error(0)
}

func (m *MockGameRepository) AddPotBalance(ctx context.Context, gameID string, amount int64) error {
	args := m.Called(ctx, gameID, amount)
	return args.Error(0)
}

func (m *MockGameRepository) ClaimPot(ctx context.Context, gameID string) (int64, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGameRepository) Delete(ctx context.Context, gameID string) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, gameID, playerID string) (*models.Player, error) {
	args := m.Called(ctx, gameID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByUID(ctx context.Context, gameID, uid string) (*models.Player, error) {
	args := m.Called(ctx, gameID, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) ListByGame(ctx context.Context, gameID string) ([]*models.Player, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) CountByGame(ctx context.Context, gameID string) (int64, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepository) AddBalance(ctx context.Context, gameID, playerID string, amount int64) error {
	args := m.Called(ctx, gameID, playerID, amount)
	return args.Error(0)
}

func (m *MockPlayerRepository) DeductBalance(ctx context.Context, gameID, playerID string, amount int64) error {
	args := m.Called(ctx, gameID, playerID, amount)
	return args.Error(0)
}

func (m *MockPlayerRepository) DeleteByUID(ctx context.Context, gameID, uid string) (int64, error) {
	args := m.Called(ctx, gameID, uid)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepository) ListGameSummariesForUID(ctx context.Context, uid string) ([]*models.GameSummary, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameSummary), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByGame(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, gameID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// RecordingEventPublisher collects published events for assertions
type RecordingEventPublisher struct {
	Events []events.Event
}

func (p *RecordingEventPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository
// getters return whatever SetRepositories installed rather than going
// through testify expectations.
type MockUnitOfWork struct {
	mock.Mock

	gameRepo        GameRepository
	playerRepo      PlayerRepository
	transactionRepo TransactionRepository
	eventBus        EventPublisher
}

// SetRepositories installs the repositories and event publisher the
// getters hand out
func (m *MockUnitOfWork) SetRepositories(
	gameRepo GameRepository,
	playerRepo PlayerRepository,
	transactionRepo TransactionRepository,
	eventBus EventPublisher,
) {
	m.gameRepo = gameRepo
	m.playerRepo = playerRepo
	m.transactionRepo = transactionRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) PlayerRepository() PlayerRepository {
	return m.playerRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
