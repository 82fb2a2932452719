package server

import (
	"net/http"
	"time"

	"boardbank/livesync"
	"boardbank/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteTimeout = 10 * time.Second

// wsMessage is the typed frame streamed over the live connection
type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// WSHandler streams the live feeds of one game over a websocket
type WSHandler struct {
	watcher *livesync.Watcher
}

// NewWSHandler creates the websocket handler
func NewWSHandler(watcher *livesync.Watcher) *WSHandler {
	return &WSHandler{watcher: watcher}
}

// Stream upgrades the connection and pushes game, players and
// transactions snapshots as they change. The connection closes when
// the game is deleted or the client goes away.
func (h *WSHandler) Stream(c *gin.Context) {
	gameID := c.Param("id")
	ctx := c.Request.Context()

	gameSub, err := h.watcher.WatchGame(ctx, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer gameSub.Cancel()

	playersSub, err := h.watcher.WatchPlayers(ctx, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer playersSub.Cancel()

	txSub, err := h.watcher.WatchTransactions(ctx, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer txSub.Cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Failed to upgrade to websocket")
		return
	}
	defer conn.Close()

	// Reader goroutine: we never expect client frames, but reading is
	// what surfaces the close.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg wsMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			log.WithError(err).WithField("gameID", gameID).Debug("Websocket write failed")
			return false
		}
		return true
	}

	for {
		select {
		case <-clientGone:
			return

		case game, ok := <-gameSub.Updates():
			if !ok {
				return
			}
			if game == nil {
				// Final frame: the session no longer exists
				write(wsMessage{Type: "gameDeleted"})
				return
			}
			if !write(wsMessage{Type: "game", Data: game}) {
				return
			}

		case players, ok := <-playersSub.Updates():
			if !ok {
				return
			}
			if players == nil {
				players = []*models.Player{}
			}
			if !write(wsMessage{Type: "players", Data: players}) {
				return
			}

		case records, ok := <-txSub.Updates():
			if !ok {
				return
			}
			if records == nil {
				records = []*models.Transaction{}
			}
			if !write(wsMessage{Type: "transactions", Data: records}) {
				return
			}

		case err := <-gameSub.Errors():
			if !write(wsMessage{Type: "error", Data: err.Error()}) {
				return
			}
		case err := <-playersSub.Errors():
			if !write(wsMessage{Type: "error", Data: err.Error()}) {
				return
			}
		case err := <-txSub.Errors():
			if !write(wsMessage{Type: "error", Data: err.Error()}) {
				return
			}
		}
	}
}
