package clientstate

import (
	"context"
	"fmt"
	"slices"

	"boardbank/models"
	"boardbank/service"

	log "github.com/sirupsen/logrus"
)

// GameDirectory resolves whether a remembered game still exists
type GameDirectory interface {
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
}

// Manager layers the resume logic on top of the raw Store. Remembered
// state can outlive the games it points at, so every read back is
// re-validated against the ledger store and stale entries are dropped.
type Manager struct {
	store Store
	games GameDirectory
}

// NewManager creates a client state manager
func NewManager(store Store, games GameDirectory) *Manager {
	return &Manager{
		store: store,
		games: games,
	}
}

// RememberGame records a visited session as both the last game and a
// recent game, alongside the nickname it was played under.
func (m *Manager) RememberGame(ctx context.Context, uid, gameID, playerID, nickname string) error {
	lastGame := &LastGame{
		GameID:   gameID,
		PlayerID: playerID,
		Nickname: nickname,
	}
	if err := m.store.SaveLastGame(ctx, uid, lastGame); err != nil {
		return fmt.Errorf("failed to save last game: %w", err)
	}
	if err := m.store.AddRecentGame(ctx, uid, gameID); err != nil {
		return fmt.Errorf("failed to add recent game: %w", err)
	}
	if nickname != "" {
		if err := m.store.SaveNickname(ctx, uid, nickname); err != nil {
			return fmt.Errorf("failed to save nickname: %w", err)
		}
	}
	return nil
}

// ForgetGame drops a session from the remembered state, clearing the
// last-game pointer only when it points at that session.
func (m *Manager) ForgetGame(ctx context.Context, uid, gameID string) error {
	if err := m.store.RemoveRecentGame(ctx, uid, gameID); err != nil {
		return fmt.Errorf("failed to remove recent game: %w", err)
	}

	lastGame, err := m.store.LastGame(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to get last game: %w", err)
	}
	if lastGame != nil && lastGame.GameID == gameID {
		if err := m.store.ClearLastGame(ctx, uid); err != nil {
			return fmt.Errorf("failed to clear last game: %w", err)
		}
	}
	return nil
}

// Resume returns the last visited session if it is still valid: the
// game must exist and the identity must still be a member. Stale
// records are cleared and nil is returned.
func (m *Manager) Resume(ctx context.Context, uid string) (*LastGame, error) {
	lastGame, err := m.store.LastGame(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get last game: %w", err)
	}
	if lastGame == nil {
		return nil, nil
	}

	game, err := m.games.GetGame(ctx, lastGame.GameID)
	if err != nil {
		if domainErr, ok := service.AsDomainError(err); ok && domainErr.Code == service.CodeGameNotFound {
			m.discardStale(ctx, uid, lastGame.GameID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to validate last game: %w", err)
	}

	if !slices.Contains(game.Members, uid) {
		m.discardStale(ctx, uid, lastGame.GameID)
		return nil, nil
	}

	return lastGame, nil
}

// discardStale clears a remembered session that no longer applies.
// Failures are logged, not returned; the caller still gets a clean
// "nothing to resume".
func (m *Manager) discardStale(ctx context.Context, uid, gameID string) {
	if err := m.store.ClearLastGame(ctx, uid); err != nil {
		log.WithError(err).WithField("uid", uid).Warn("Failed to clear stale last game")
	}
	if err := m.store.RemoveRecentGame(ctx, uid, gameID); err != nil {
		log.WithError(err).WithField("uid", uid).Warn("Failed to remove stale recent game")
	}
}

// Nickname returns the remembered display name, empty when none
func (m *Manager) Nickname(ctx context.Context, uid string) (string, error) {
	return m.store.Nickname(ctx, uid)
}

// SaveNickname remembers the display name for future sessions
func (m *Manager) SaveNickname(ctx context.Context, uid, nickname string) error {
	return m.store.SaveNickname(ctx, uid, nickname)
}

// RecentGames lists the ids of previously visited sessions
func (m *Manager) RecentGames(ctx context.Context, uid string) ([]string, error) {
	return m.store.RecentGames(ctx, uid)
}
