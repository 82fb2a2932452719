package repository

import (
	"context"
	"fmt"

	"boardbank/database"
	"boardbank/models"
)

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append adds a record to a game's transaction log. Records are never
// updated or deleted afterwards.
func (r *TransactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (game_id, type, from_account, to_account, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.GameID,
		tx.Type,
		tx.From,
		tx.To,
		tx.Amount,
	).Scan(&tx.ID, &tx.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append transaction for game %s: %w", tx.GameID, err)
	}

	return nil
}

// ListByGame returns a game's transaction log, newest first. A limit of
// 0 or less returns the whole log.
func (r *TransactionRepository) ListByGame(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, game_id, type, from_account, to_account, amount, created_at
		FROM transactions
		WHERE game_id = $1
		ORDER BY created_at DESC, id DESC
	`

	args := []any{gameID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.GameID,
			&tx.Type,
			&tx.From,
			&tx.To,
			&tx.Amount,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
