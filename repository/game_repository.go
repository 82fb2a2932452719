package repository

import (
	"context"
	"fmt"

	"boardbank/database"
	"boardbank/models"
	"boardbank/service"

	"github.com/jackc/pgx/v5"
)

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// Create inserts a new game row
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, owner_id, bank_balance, pot_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.ID,
		game.OwnerID,
		game.BankBalance,
		game.PotBalance,
	).Scan(&game.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game %s: %w", game.ID, err)
	}

	return nil
}

// GetByID retrieves a game with its member uids, or nil when absent
func (r *GameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `
		SELECT id, owner_id, bank_balance, pot_balance, created_at
		FROM games
		WHERE id = $1
	`

	var game models.Game
	err := r.q.QueryRow(ctx, query, id).Scan(
		&game.ID,
		&game.OwnerID,
		&game.BankBalance,
		&game.PotBalance,
		&game.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	memberQuery := `
		SELECT uid FROM players WHERE game_id = $1 ORDER BY created_at
	`
	rows, err := r.q.Query(ctx, memberQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of game %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("failed to scan member uid: %w", err)
		}
		game.Members = append(game.Members, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return &game, nil
}

// AddBankBalance adds delta to the bank balance atomically. The bank is
// unconstrained and may go negative.
func (r *GameRepository) AddBankBalance(ctx context.Context, gameID string, delta int64) error {
	query := `
		UPDATE games
		SET bank_balance = bank_balance + $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, delta, gameID)
	if err != nil {
		return fmt.Errorf("failed to adjust bank balance for game %s: %w", gameID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrGameNotFound(gameID)
	}

	return nil
}

// DeductBankBalance subtracts amount from the bank only when the bank
// covers it, deciding insufficiency at the store rather than from a
// caller-side read.
func (r *GameRepository) DeductBankBalance(ctx context.Context, gameID string, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount(amount)
	}

	query := `
		UPDATE games
		SET bank_balance = bank_balance - $1
		WHERE id = $2 AND bank_balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, gameID)
	if err != nil {
		return fmt.Errorf("failed to deduct bank balance for game %s: %w", gameID, err)
	}

	if result.RowsAffected() == 0 {
		game, err := r.GetByID(ctx, gameID)
		if err != nil {
			return fmt.Errorf("failed to check game: %w", err)
		}
		if game == nil {
			return service.ErrGameNotFound(gameID)
		}
		return service.ErrBankInsufficient(game.BankBalance, amount)
	}

	return nil
}

// AddPotBalance adds amount to the pot balance atomically
func (r *GameRepository) AddPotBalance(ctx context.Context, gameID string, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount(amount)
	}

	query := `
		UPDATE games
		SET pot_balance = pot_balance + $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, gameID)
	if err != nil {
		return fmt.Errorf("failed to credit pot for game %s: %w", gameID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrGameNotFound(gameID)
	}

	return nil
}

// ClaimPot atomically reads the pot balance, zeroes it and returns the
// claimed amount. The row lock closes the race where two concurrent
// claims both observe a nonzero pot.
func (r *GameRepository) ClaimPot(ctx context.Context, gameID string) (int64, error) {
	lockQuery := `
		SELECT pot_balance FROM games WHERE id = $1 FOR UPDATE
	`

	var pot int64
	err := r.q.QueryRow(ctx, lockQuery, gameID).Scan(&pot)
	if err == pgx.ErrNoRows {
		return 0, service.ErrGameNotFound(gameID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock game %s for pot claim: %w", gameID, err)
	}

	if pot <= 0 {
		return 0, nil
	}

	clearQuery := `
		UPDATE games SET pot_balance = 0 WHERE id = $1
	`
	if _, err := r.q.Exec(ctx, clearQuery, gameID); err != nil {
		return 0, fmt.Errorf("failed to clear pot for game %s: %w", gameID, err)
	}

	return pot, nil
}

// Delete removes the game; player accounts and transaction records are
// removed by cascade.
func (r *GameRepository) Delete(ctx context.Context, gameID string) error {
	query := `
		DELETE FROM games WHERE id = $1
	`

	if _, err := r.q.Exec(ctx, query, gameID); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}

	return nil
}
