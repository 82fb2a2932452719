package service

import (
	"context"
	"fmt"

	"boardbank/events"
	"boardbank/models"

	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

func (s *ledgerService) Transfer(ctx context.Context, gameID, fromPlayerID, toPlayerID string, amount int64) (*models.Transaction, error) {
	// Validate inputs before any mutation
	if amount <= 0 {
		return nil, ErrInvalidAmount(amount)
	}
	if fromPlayerID == toPlayerID {
		return nil, ErrSameAccount(fromPlayerID)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	fromPlayer, err := uow.PlayerRepository().GetByID(ctx, gameID, fromPlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender account: %w", err)
	}
	if fromPlayer == nil {
		return nil, ErrPlayerNotFound(fromPlayerID)
	}
	if fromPlayer.Balance < amount {
		return nil, ErrInsufficientFunds(fromPlayer.Balance, amount)
	}

	toPlayer, err := uow.PlayerRepository().GetByID(ctx, gameID, toPlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient account: %w", err)
	}
	if toPlayer == nil {
		return nil, ErrPlayerNotFound(toPlayerID)
	}

	if err := uow.PlayerRepository().DeductBalance(ctx, gameID, fromPlayerID, amount); err != nil {
		return nil, fmt.Errorf("failed to deduct transfer amount: %w", err)
	}
	if err := uow.PlayerRepository().AddBalance(ctx, gameID, toPlayerID, amount); err != nil {
		return nil, fmt.Errorf("failed to add transfer amount: %w", err)
	}

	record := &models.Transaction{
		GameID: gameID,
		Type:   models.TransactionTypeTransfer,
		From:   strptr(fromPlayerID),
		To:     strptr(toPlayerID),
		Amount: amount,
	}
	if err := recordTransaction(ctx, uow, record); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayerBalanceChangeEvent{
		GameID:     gameID,
		PlayerID:   fromPlayerID,
		NewBalance: fromPlayer.Balance - amount,
	})
	uow.EventBus().Publish(events.PlayerBalanceChangeEvent{
		GameID:     gameID,
		PlayerID:   toPlayerID,
		NewBalance: toPlayer.Balance + amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID": gameID,
		"from":   fromPlayerID,
		"to":     toPlayerID,
		"amount": amount,
	}).Info("Transfer completed")

	return record, nil
}

func (s *ledgerService) PayToBank(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount(amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, player, err := s.getGameAndPlayer(ctx, uow, gameID, playerID)
	if err != nil {
		return nil, err
	}
	if player.Balance < amount {
		return nil, ErrInsufficientFunds(player.Balance, amount)
	}

	if err := uow.PlayerRepository().DeductBalance(ctx, gameID, playerID, amount); err != nil {
		return nil, fmt.Errorf("failed to deduct payment: %w", err)
	}
	if err := uow.GameRepository().AddBankBalance(ctx, gameID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit bank: %w", err)
	}

	record := &models.Transaction{
		GameID: gameID,
		Type:   models.TransactionTypePayBank,
		From:   strptr(playerID),
		To:     strptr(models.AccountBank),
		Amount: amount,
	}
	if err := recordTransaction(ctx, uow, record); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayerBalanceChangeEvent{
		GameID:     gameID,
		PlayerID:   playerID,
		NewBalance: player.Balance - amount,
	})
	uow.EventBus().Publish(events.GameBalanceChangeEvent{
		GameID:      gameID,
		BankBalance: game.BankBalance + amount,
		PotBalance:  game.PotBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

func (s *ledgerService) TakeFromBank(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount(amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, player, err := s.getGameAndPlayer(ctx, uow, gameID, playerID)
	if err != nil {
		return nil, err
	}
	if game.BankBalance < amount {
		return nil, ErrBankInsufficient(game.BankBalance, amount)
	}

	if err := uow.GameRepository().DeductBankBalance(ctx, gameID, amount); err != nil {
		return nil, fmt.Errorf("failed to debit bank: %w", err)
	}
	if err := uow.PlayerRepository().AddBalance(ctx, gameID, playerID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit player: %w", err)
	}

	record := &models.Transaction{
		GameID: gameID,
		Type:   models.TransactionTypeTakeBank,
		From:   strptr(models.AccountBank),
		To:     strptr(playerID),
		Amount: amount,
	}
	if err := recordTransaction(ctx, uow, record); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayerBalanceChangeEvent{
		GameID:     gameID,
		PlayerID:   playerID,
		NewBalance: player.Balance + amount,
	})
	uow.EventBus().Publish(events.GameBalanceChangeEvent{
		GameID:      gameID,
		BankBalance: game.BankBalance - amount,
		PotBalance:  game.PotBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

func (s *ledgerService) PayToPot(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount(amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, player, err := s.getGameAndPlayer(ctx, uow, gameID, playerID)
	if err != nil {
		return nil, err
	}
	if player.Balance < amount {
		return nil, ErrInsufficientFunds(player.Balance, amount)
	}

	if err := uow.PlayerRepository().DeductBalance(ctx, gameID, playerID, amount); err != nil {
		return nil, fmt.Errorf("failed to deduct payment: %w", err)
	}
	if err := uow.GameRepository().AddPotBalance(ctx, gameID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit pot: %w", err)
	}

	record := &models.Transaction{
		GameID: gameID,
		Type:   models.TransactionTypePayPot,
		From:   strptr(playerID),
		To:     strptr(models.AccountPot),
		Amount: amount,
	}
	if err := recordTransaction(ctx, uow, record); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayerBalanceChangeEvent{
		GameID:     gameID,
		PlayerID:   playerID,
		NewBalance: player.Balance - amount,
	})
	uow.EventBus().Publish(events.GameBalanceChangeEvent{
		GameID:      gameID,
		BankBalance: game.BankBalance,
		PotBalance:  game.PotBalance + amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

// TakeFromPot drains the whole pot into the claiming player's account:
// the house rule is that whoever lands on the pot takes all of it. The
// read-then-clear runs inside one store transaction so two concurrent
// claims can never both see a nonzero pot.
func (s *ledgerService) TakeFromPot(ctx context.Context, gameID, playerID string) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, player, err := s.getGameAndPlayer(ctx, uow, gameID, playerID)
	if err != nil {
		return nil, err
	}

	claimed, err := uow.GameRepository().ClaimPot(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pot: %w", err)
	}
	if claimed <= 0 {
		// Empty pot: nothing moves, nothing is logged
		return nil, nil
	}

	if err := uow.PlayerRepository().AddBalance(ctx, gameID, playerID, claimed); err != nil {
		return nil, fmt.Errorf("failed to credit claimed pot: %w", err)
	}

	record := &models.Transaction{
		GameID: gameID,
		Type:   models.TransactionTypeTakePot,
		From:   strptr(models.AccountPot),
		To:     strptr(playerID),
		Amount: claimed,
	}
	if err := recordTransaction(ctx, uow, record); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayerBalanceChangeEvent{
		GameID:     gameID,
		PlayerID:   playerID,
		NewBalance: player.Balance + claimed,
	})
	uow.EventBus().Publish(events.GameBalanceChangeEvent{
		GameID:      gameID,
		BankBalance: game.BankBalance,
		PotBalance:  0,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":  gameID,
		"player":  playerID,
		"claimed": claimed,
	}).Info("Pot claimed")

	return record, nil
}

// GiveStartBonus credits the player without debiting the bank; passing
// START creates money, so global conservation intentionally does not
// hold for this operation.
func (s *ledgerService) GiveStartBonus(ctx context.Context, gameID, playerID string, bonus int64) (*models.Transaction, error) {
	if bonus <= 0 {
		bonus = DefaultStartBonus
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	_, player, err := s.getGameAndPlayer(ctx, uow, gameID, playerID)
	if err != nil {
		return nil, err
	}

	if err := uow.PlayerRepository().AddBalance(ctx, gameID, playerID, bonus); err != nil {
		return nil, fmt.Errorf("failed to credit start bonus: %w", err)
	}

	record := &models.Transaction{
		GameID: gameID,
		Type:   models.TransactionTypeStartBonus,
		From:   strptr(models.AccountBank),
		To:     strptr(playerID),
		Amount: bonus,
	}
	if err := recordTransaction(ctx, uow, record); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayerBalanceChangeEvent{
		GameID:     gameID,
		PlayerID:   playerID,
		NewBalance: player.Balance + bonus,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

func (s *ledgerService) Transactions(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := uow.TransactionRepository().ListByGame(ctx, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return records, nil
}

// getGameAndPlayer loads the game aggregate and one player account,
// translating absences into the not-found taxonomy.
func (s *ledgerService) getGameAndPlayer(ctx context.Context, uow UnitOfWork, gameID, playerID string) (*models.Game, *models.Player, error) {
	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, nil, ErrGameNotFound(gameID)
	}

	player, err := uow.PlayerRepository().GetByID(ctx, gameID, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player account: %w", err)
	}
	if player == nil {
		return nil, nil, ErrPlayerNotFound(playerID)
	}

	return game, player, nil
}
