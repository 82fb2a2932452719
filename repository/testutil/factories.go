package testutil

import (
	"time"

	"boardbank/models"

	"github.com/google/uuid"
)

// CreateTestGame creates a test game with default balances
func CreateTestGame(id, ownerID string) *models.Game {
	return &models.Game{
		ID:          id,
		OwnerID:     ownerID,
		BankBalance: 10000,
		PotBalance:  0,
		CreatedAt:   time.Now(),
	}
}

// CreateTestGameWithBalances creates a test game with specific bank and pot balances
func CreateTestGameWithBalances(id, ownerID string, bank, pot int64) *models.Game {
	game := CreateTestGame(id, ownerID)
	game.BankBalance = bank
	game.PotBalance = pot
	return game
}

// CreateTestPlayer creates a test player account with the default balance
func CreateTestPlayer(gameID, uid, name string) *models.Player {
	return &models.Player{
		ID:        uuid.NewString(),
		GameID:    gameID,
		UID:       uid,
		Name:      name,
		Balance:   1500,
		CreatedAt: time.Now(),
	}
}

// CreateTestPlayerWithBalance creates a test player with a specific balance
func CreateTestPlayerWithBalance(gameID, uid, name string, balance int64) *models.Player {
	player := CreateTestPlayer(gameID, uid, name)
	player.Balance = balance
	return player
}

// CreateTestTransaction creates a test transfer record between two players
func CreateTestTransaction(gameID, from, to string, amount int64) *models.Transaction {
	return &models.Transaction{
		GameID: gameID,
		Type:   models.TransactionTypeTransfer,
		From:   &from,
		To:     &to,
		Amount: amount,
	}
}
