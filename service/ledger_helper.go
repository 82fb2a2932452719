package service

import (
	"context"
	"fmt"

	"boardbank/events"
	"boardbank/models"
)

// recordTransaction appends the audit record for a ledger operation and
// queues its event. This is the single entry point for writing the
// transaction log: every balance mutation in the system pairs with
// exactly one call to it inside the same unit of work.
func recordTransaction(ctx context.Context, uow UnitOfWork, tx *models.Transaction) error {
	if err := uow.TransactionRepository().Append(ctx, tx); err != nil {
		return fmt.Errorf("failed to append transaction record: %w", err)
	}

	uow.EventBus().Publish(events.TransactionLoggedEvent{
		GameID:          tx.GameID,
		TransactionID:   tx.ID,
		TransactionType: tx.Type,
		Amount:          tx.Amount,
	})

	return nil
}

func strptr(s string) *string {
	return &s
}
