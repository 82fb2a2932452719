package server

import (
	"context"
	"net/http"

	"boardbank/clientstate"
	"boardbank/models"
	"boardbank/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GameHandler exposes the session registry over HTTP
type GameHandler struct {
	games service.GameService
	state *clientstate.Manager
}

// NewGameHandler creates the session registry handler
func NewGameHandler(games service.GameService, state *clientstate.Manager) *GameHandler {
	return &GameHandler{
		games: games,
		state: state,
	}
}

type createGameRequest struct {
	Nickname string `json:"nickname"`
}

type joinGameRequest struct {
	Nickname string `json:"nickname"`
}

// Create starts a new session with the caller as owner and first
// member, and returns the shareable game code.
func (h *GameHandler) Create(c *gin.Context) {
	uid := c.GetString(contextKeyUID)

	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	nickname := h.resolveNickname(c.Request.Context(), uid, req.Nickname)

	gameID, err := h.games.CreateGame(c.Request.Context(), uid, nickname)
	if err != nil {
		respondError(c, err)
		return
	}

	game, players, err := h.loadGameView(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.remember(c.Request.Context(), uid, gameID, nickname, players)

	c.JSON(http.StatusCreated, gin.H{
		"game":    game,
		"players": players,
	})
}

// Join adds the caller to an existing session
func (h *GameHandler) Join(c *gin.Context) {
	uid := c.GetString(contextKeyUID)
	gameID := c.Param("id")

	var req joinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	nickname := h.resolveNickname(c.Request.Context(), uid, req.Nickname)

	if err := h.games.JoinGame(c.Request.Context(), gameID, uid, nickname); err != nil {
		respondError(c, err)
		return
	}

	game, players, err := h.loadGameView(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.remember(c.Request.Context(), uid, gameID, nickname, players)

	c.JSON(http.StatusOK, gin.H{
		"game":    game,
		"players": players,
	})
}

// Leave removes the caller's account from a session. Leaving a game
// that is already gone still succeeds.
func (h *GameHandler) Leave(c *gin.Context) {
	uid := c.GetString(contextKeyUID)
	gameID := c.Param("id")

	if err := h.games.LeaveGame(c.Request.Context(), gameID, uid); err != nil {
		respondError(c, err)
		return
	}

	if h.state != nil {
		if err := h.state.ForgetGame(c.Request.Context(), uid, gameID); err != nil {
			log.WithError(err).Warn("Failed to forget game in client state")
		}
	}

	c.Status(http.StatusNoContent)
}

// List returns summaries of the sessions the caller belongs to
func (h *GameHandler) List(c *gin.Context) {
	uid := c.GetString(contextKeyUID)

	summaries, err := h.games.ListGamesForPlayer(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	if summaries == nil {
		summaries = []*models.GameSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"games": summaries})
}

// Get returns one session with its member accounts
func (h *GameHandler) Get(c *gin.Context) {
	gameID := c.Param("id")

	game, players, err := h.loadGameView(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":    game,
		"players": players,
	})
}

// Resume returns the caller's still-valid last visited session, or an
// empty body when there is nothing to go back to.
func (h *GameHandler) Resume(c *gin.Context) {
	uid := c.GetString(contextKeyUID)

	if h.state == nil {
		c.JSON(http.StatusOK, gin.H{"lastGame": nil})
		return
	}

	lastGame, err := h.state.Resume(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lastGame": lastGame})
}

func (h *GameHandler) loadGameView(ctx context.Context, gameID string) (*models.Game, []*models.Player, error) {
	game, err := h.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	players, err := h.games.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if players == nil {
		players = []*models.Player{}
	}
	return game, players, nil
}

// resolveNickname prefers the explicit request value and falls back to
// the remembered one.
func (h *GameHandler) resolveNickname(ctx context.Context, uid, requested string) string {
	if requested != "" || h.state == nil {
		return requested
	}
	nickname, err := h.state.Nickname(ctx, uid)
	if err != nil {
		log.WithError(err).Warn("Failed to read remembered nickname")
		return ""
	}
	return nickname
}

// remember records the visited session in the convenience store.
// Failures never fail the request.
func (h *GameHandler) remember(ctx context.Context, uid, gameID, nickname string, players []*models.Player) {
	if h.state == nil {
		return
	}
	playerID := ""
	for _, p := range players {
		if p.UID == uid {
			playerID = p.ID
			break
		}
	}
	if err := h.state.RememberGame(ctx, uid, gameID, playerID, nickname); err != nil {
		log.WithError(err).Warn("Failed to remember game in client state")
	}
}
