package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"boardbank/events"
	"boardbank/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	gameCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	gameCodeLength   = 6
	gameCodeAttempts = 5
)

type gameService struct {
	uowFactory UnitOfWorkFactory
}

// NewGameService creates a new game registry service
func NewGameService(uowFactory UnitOfWorkFactory) GameService {
	return &gameService{
		uowFactory: uowFactory,
	}
}

// newGameCode produces a short, human-shareable session code.
func newGameCode() string {
	code := make([]byte, gameCodeLength)
	for i := range code {
		code[i] = gameCodeAlphabet[rand.IntN(len(gameCodeAlphabet))]
	}
	return string(code)
}

func (s *gameService) CreateGame(ctx context.Context, ownerUID, ownerName string) (string, error) {
	if ownerUID == "" {
		return "", ErrIdentityMissing()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Allocate a collision-checked game code
	var gameID string
	for attempt := 0; attempt < gameCodeAttempts; attempt++ {
		candidate := newGameCode()
		existing, err := uow.GameRepository().GetByID(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check game code: %w", err)
		}
		if existing == nil {
			gameID = candidate
			break
		}
	}
	if gameID == "" {
		return "", fmt.Errorf("failed to allocate a unique game code after %d attempts", gameCodeAttempts)
	}

	game := &models.Game{
		ID:          gameID,
		OwnerID:     ownerUID,
		BankBalance: InitialBankBalance,
		PotBalance:  0,
	}
	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	owner := &models.Player{
		ID:      uuid.NewString(),
		GameID:  gameID,
		UID:     ownerUID,
		Name:    ownerName,
		Balance: InitialPlayerBalance,
	}
	if err := uow.PlayerRepository().Create(ctx, owner); err != nil {
		return "", fmt.Errorf("failed to create owner account: %w", err)
	}

	uow.EventBus().Publish(events.GameCreatedEvent{GameID: gameID, OwnerUID: ownerUID})
	uow.EventBus().Publish(events.PlayerJoinedEvent{
		GameID:   gameID,
		PlayerID: owner.ID,
		UID:      ownerUID,
		Name:     ownerName,
	})

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":   gameID,
		"ownerUID": ownerUID,
	}).Info("Game created")

	return gameID, nil
}

func (s *gameService) JoinGame(ctx context.Context, gameID, uid, name string) error {
	if uid == "" {
		return ErrIdentityMissing()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return ErrGameNotFound(gameID)
	}

	existing, err := uow.PlayerRepository().GetByUID(ctx, gameID, uid)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if existing != nil {
		return ErrAlreadyMember(uid)
	}

	player := &models.Player{
		ID:      uuid.NewString(),
		GameID:  gameID,
		UID:     uid,
		Name:    name,
		Balance: InitialPlayerBalance,
	}
	if err := uow.PlayerRepository().Create(ctx, player); err != nil {
		return fmt.Errorf("failed to create player account: %w", err)
	}

	uow.EventBus().Publish(events.PlayerJoinedEvent{
		GameID:   gameID,
		PlayerID: player.ID,
		UID:      uid,
		Name:     name,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID": gameID,
		"uid":    uid,
	}).Info("Player joined game")

	return nil
}

func (s *gameService) LeaveGame(ctx context.Context, gameID, uid string) error {
	if uid == "" {
		return ErrIdentityMissing()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		// Leaving a game that no longer exists is a no-op
		return nil
	}

	removed, err := uow.PlayerRepository().DeleteByUID(ctx, gameID, uid)
	if err != nil {
		return fmt.Errorf("failed to remove player account: %w", err)
	}

	remaining, err := uow.PlayerRepository().CountByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to count remaining members: %w", err)
	}

	if removed > 0 {
		uow.EventBus().Publish(events.PlayerLeftEvent{GameID: gameID, UID: uid})
	}

	if remaining == 0 {
		// The last member left; the game, its accounts and its
		// transaction records all go away.
		if err := uow.GameRepository().Delete(ctx, gameID); err != nil {
			return fmt.Errorf("failed to delete empty game: %w", err)
		}
		uow.EventBus().Publish(events.GameDeletedEvent{GameID: gameID})
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":      gameID,
		"uid":         uid,
		"gameDeleted": remaining == 0,
	}).Info("Player left game")

	return nil
}

func (s *gameService) ListGamesForPlayer(ctx context.Context, uid string) ([]*models.GameSummary, error) {
	if uid == "" {
		return nil, ErrIdentityMissing()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	summaries, err := uow.PlayerRepository().ListGameSummariesForUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for identity: %w", err)
	}

	return summaries, nil
}

func (s *gameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound(gameID)
	}

	return game, nil
}

func (s *gameService) ListPlayers(ctx context.Context, gameID string) ([]*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	players, err := uow.PlayerRepository().ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return players, nil
}
