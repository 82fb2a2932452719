package service

import (
	"context"

	"boardbank/events"
	"boardbank/models"
)

// Starting amounts for a new game session. The bank may go negative
// later; the pot never does.
const (
	InitialBankBalance   int64 = 10000
	InitialPlayerBalance int64 = 1500
	DefaultStartBonus    int64 = 200
)

// GameRepository defines the interface for game aggregate data access
type GameRepository interface {
	// Create inserts a new game row
	Create(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game with its member uids, or nil if absent
	GetByID(ctx context.Context, id string) (*models.Game, error)

	// AddBankBalance adds delta to the bank balance atomically. The
	// bank is unconstrained and may go negative.
	AddBankBalance(ctx context.Context, gameID string, delta int64) error

	// DeductBankBalance subtracts amount from the bank balance,
	// failing with BankInsufficient when the bank holds less.
	DeductBankBalance(ctx context.Context, gameID string, amount int64) error

	// AddPotBalance adds amount to the pot balance atomically
	AddPotBalance(ctx context.Context, gameID string, amount int64) error

	// ClaimPot atomically reads the pot balance, zeroes it and returns
	// the claimed amount. Returns 0 when the pot is already empty. The
	// read-then-clear runs under a row lock so two concurrent claims
	// can never both observe a nonzero pot.
	ClaimPot(ctx context.Context, gameID string) (int64, error)

	// Delete removes the game; player accounts and transaction records
	// go with it.
	Delete(ctx context.Context, gameID string) error
}

// PlayerRepository defines the interface for player account data access
type PlayerRepository interface {
	// Create inserts a new player account
	Create(ctx context.Context, player *models.Player) error

	// GetByID retrieves a player account within a game, or nil
	GetByID(ctx context.Context, gameID, playerID string) (*models.Player, error)

	// GetByUID retrieves the account an identity holds in a game, or nil
	GetByUID(ctx context.Context, gameID, uid string) (*models.Player, error)

	// ListByGame returns all player accounts in a game
	ListByGame(ctx context.Context, gameID string) ([]*models.Player, error)

	// CountByGame returns the number of player accounts in a game
	CountByGame(ctx context.Context, gameID string) (int64, error)

	// AddBalance adds to a player's balance atomically
	AddBalance(ctx context.Context, gameID, playerID string, amount int64) error

	// DeductBalance deducts from a player's balance atomically, failing
	// with InsufficientFunds when the balance does not cover amount
	DeductBalance(ctx context.Context, gameID, playerID string, amount int64) error

	// DeleteByUID removes an identity's account(s) from a game and
	// reports how many rows were removed
	DeleteByUID(ctx context.Context, gameID, uid string) (int64, error)

	// ListGameSummariesForUID resolves every game an identity currently
	// belongs to, derived by scanning player accounts across games
	ListGameSummariesForUID(ctx context.Context, uid string) ([]*models.GameSummary, error)
}

// TransactionRepository defines the interface for the append-only
// transaction log
type TransactionRepository interface {
	// Append writes one immutable transaction record
	Append(ctx context.Context, tx *models.Transaction) error

	// ListByGame returns up to limit records for a game, newest first
	ListByGame(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error)
}

// GameService defines the session registry operations
type GameService interface {
	// CreateGame allocates a fresh game code, creates the session and
	// the owner's account, and returns the code
	CreateGame(ctx context.Context, ownerUID, ownerName string) (string, error)

	// JoinGame adds an identity to a game with a fresh account
	JoinGame(ctx context.Context, gameID, uid, name string) error

	// LeaveGame removes an identity and its account; deletes the game
	// when the last member leaves. Idempotent.
	LeaveGame(ctx context.Context, gameID, uid string) error

	// ListGamesForPlayer returns summaries of the games an identity
	// currently belongs to
	ListGamesForPlayer(ctx context.Context, uid string) ([]*models.GameSummary, error)

	// GetGame retrieves a game aggregate with its member uids
	GetGame(ctx context.Context, gameID string) (*models.Game, error)

	// ListPlayers returns the player accounts of a game
	ListPlayers(ctx context.Context, gameID string) ([]*models.Player, error)
}

// LedgerService defines the atomic money-movement operations. Every
// operation either fully applies its balance mutations and appends its
// log record, or applies none of them.
type LedgerService interface {
	// Transfer moves amount between two player accounts
	Transfer(ctx context.Context, gameID, fromPlayerID, toPlayerID string, amount int64) (*models.Transaction, error)

	// PayToBank moves amount from a player to the bank
	PayToBank(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error)

	// TakeFromBank moves amount from the bank to a player
	TakeFromBank(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error)

	// PayToPot moves amount from a player into the pot
	PayToPot(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error)

	// TakeFromPot drains the whole pot into a player's account. When
	// the pot is empty it is a no-op and returns (nil, nil).
	TakeFromPot(ctx context.Context, gameID, playerID string) (*models.Transaction, error)

	// GiveStartBonus credits a player with bonus (default 200 when
	// bonus <= 0) without debiting the bank; the money is created, not
	// transferred.
	GiveStartBonus(ctx context.Context, gameID, playerID string, bonus int64) (*models.Transaction, error)

	// Transactions returns up to limit log records, newest first
	Transactions(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository
// operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	GameRepository() GameRepository
	PlayerRepository() PlayerRepository
	TransactionRepository() TransactionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork
// instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
