package models

import (
	"time"
)

// Game represents one shared bank-tracking session with its own bank,
// pot and member accounts. The member set is derived from the players
// table, one row per joined identity.
type Game struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"ownerId"`
	BankBalance int64     `db:"bank_balance" json:"bankBalance"`
	PotBalance  int64     `db:"pot_balance" json:"potBalance"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	// Members holds the uids currently joined. Populated by the
	// repository from the players table, not stored on the game row.
	Members []string `db:"-" json:"members"`
}

// GameSummary is the read-side projection used for a player's game
// list and for re-validating a locally remembered game.
type GameSummary struct {
	ID          string    `db:"id" json:"id"`
	BankBalance int64     `db:"bank_balance" json:"bankBalance"`
	PotBalance  int64     `db:"pot_balance" json:"potBalance"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
