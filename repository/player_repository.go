package repository

import (
	"context"
	"errors"
	"fmt"

	"boardbank/database"
	"boardbank/models"
	"boardbank/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error code for unique constraint violations
const uniqueViolationCode = "23505"

// PlayerRepository implements the PlayerRepository interface
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

// newPlayerRepositoryWithTx creates a new player repository with a transaction
func newPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

// Create inserts a new player account. A duplicate (game, uid) pair is
// reported as AlreadyMember via the unique constraint.
func (r *PlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, game_id, uid, name, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		player.ID,
		player.GameID,
		player.UID,
		player.Name,
		player.Balance,
	).Scan(&player.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return service.ErrAlreadyMember(player.UID)
		}
		return fmt.Errorf("failed to create player account for uid %s in game %s: %w", player.UID, player.GameID, err)
	}

	return nil
}

// GetByID retrieves a player account within a game, or nil
func (r *PlayerRepository) GetByID(ctx context.Context, gameID, playerID string) (*models.Player, error) {
	query := `
		SELECT id, game_id, uid, name, balance, created_at
		FROM players
		WHERE game_id = $1 AND id = $2
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, gameID, playerID).Scan(
		&player.ID,
		&player.GameID,
		&player.UID,
		&player.Name,
		&player.Balance,
		&player.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s in game %s: %w", playerID, gameID, err)
	}

	return &player, nil
}

// GetByUID retrieves the account an identity holds in a game, or nil
func (r *PlayerRepository) GetByUID(ctx context.Context, gameID, uid string) (*models.Player, error) {
	query := `
		SELECT id, game_id, uid, name, balance, created_at
		FROM players
		WHERE game_id = $1 AND uid = $2
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, gameID, uid).Scan(
		&player.ID,
		&player.GameID,
		&player.UID,
		&player.Name,
		&player.Balance,
		&player.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for uid %s in game %s: %w", uid, gameID, err)
	}

	return &player, nil
}

// ListByGame returns all player accounts in a game, oldest first
func (r *PlayerRepository) ListByGame(ctx context.Context, gameID string) ([]*models.Player, error) {
	query := `
		SELECT id, game_id, uid, name, balance, created_at
		FROM players
		WHERE game_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		err := rows.Scan(
			&player.ID,
			&player.GameID,
			&player.UID,
			&player.Name,
			&player.Balance,
			&player.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}

// CountByGame returns the number of player accounts in a game
func (r *PlayerRepository) CountByGame(ctx context.Context, gameID string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM players WHERE game_id = $1
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players for game %s: %w", gameID, err)
	}

	return count, nil
}

// AddBalance adds to a player's balance atomically
func (r *PlayerRepository) AddBalance(ctx context.Context, gameID, playerID string, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount(amount)
	}

	query := `
		UPDATE players
		SET balance = balance + $1
		WHERE game_id = $2 AND id = $3
	`

	result, err := r.q.Exec(ctx, query, amount, gameID, playerID)
	if err != nil {
		return fmt.Errorf("failed to add balance for player %s: %w", playerID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrPlayerNotFound(playerID)
	}

	return nil
}

// DeductBalance deducts from a player's balance only when the balance
// covers amount; insufficiency is decided by the conditional update,
// not by a caller-side read.
func (r *PlayerRepository) DeductBalance(ctx context.Context, gameID, playerID string, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount(amount)
	}

	query := `
		UPDATE players
		SET balance = balance - $1
		WHERE game_id = $2 AND id = $3 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, gameID, playerID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for player %s: %w", playerID, err)
	}

	if result.RowsAffected() == 0 {
		player, err := r.GetByID(ctx, gameID, playerID)
		if err != nil {
			return fmt.Errorf("failed to check player: %w", err)
		}
		if player == nil {
			return service.ErrPlayerNotFound(playerID)
		}
		return service.ErrInsufficientFunds(player.Balance, amount)
	}

	return nil
}

// DeleteByUID removes an identity's account(s) from a game
func (r *PlayerRepository) DeleteByUID(ctx context.Context, gameID, uid string) (int64, error) {
	query := `
		DELETE FROM players WHERE game_id = $1 AND uid = $2
	`

	result, err := r.q.Exec(ctx, query, gameID, uid)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account for uid %s in game %s: %w", uid, gameID, err)
	}

	return result.RowsAffected(), nil
}

// ListGameSummariesForUID resolves the games an identity belongs to by
// scanning player accounts across all games. Kept as a pure read-side
// projection so membership has a single source of truth.
func (r *PlayerRepository) ListGameSummariesForUID(ctx context.Context, uid string) ([]*models.GameSummary, error) {
	query := `
		SELECT g.id, g.bank_balance, g.pot_balance, g.created_at
		FROM players p
		JOIN games g ON g.id = p.game_id
		WHERE p.uid = $1
		ORDER BY g.created_at DESC
	`

	rows, err := r.q.Query(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for uid %s: %w", uid, err)
	}
	defer rows.Close()

	var summaries []*models.GameSummary
	for rows.Next() {
		var summary models.GameSummary
		err := rows.Scan(
			&summary.ID,
			&summary.BankBalance,
			&summary.PotBalance,
			&summary.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game summary: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game summaries: %w", err)
	}

	return summaries, nil
}
