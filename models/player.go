package models

import (
	"time"
)

// Player is a participant's balance record scoped to one game. The
// account id is distinct from the participant uid: an identity joins a
// game at most once, producing one account.
type Player struct {
	ID        string    `db:"id" json:"id"`
	GameID    string    `db:"game_id" json:"gameId"`
	UID       string    `db:"uid" json:"uid"`
	Name      string    `db:"name" json:"name"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
