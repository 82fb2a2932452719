package models

import (
	"time"
)

// TransactionType represents the kind of ledger movement
type TransactionType string

const (
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypePayBank    TransactionType = "payBank"
	TransactionTypeTakeBank   TransactionType = "takeBank"
	TransactionTypePayPot     TransactionType = "payPot"
	TransactionTypeTakePot    TransactionType = "takePot"
	TransactionTypeStartBonus TransactionType = "startBonus"
)

// Counterparty account names used in the from/to fields alongside
// player account ids.
const (
	AccountBank = "bank"
	AccountPot  = "pot"
)

// Transaction is the immutable audit entry for one ledger operation.
// Records are never updated or deleted individually; they are removed
// only when the owning game is deleted.
type Transaction struct {
	ID     int64           `db:"id" json:"id"`
	GameID string          `db:"game_id" json:"gameId"`
	Type   TransactionType `db:"type" json:"type"`
	// From and To each hold a player account id, AccountBank,
	// AccountPot, or nil when absent.
	From      *string   `db:"from_account" json:"from,omitempty"`
	To        *string   `db:"to_account" json:"to,omitempty"`
	Amount    int64     `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
