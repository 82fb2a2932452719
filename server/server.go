package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"boardbank/clientstate"
	"boardbank/livesync"
	"boardbank/service"
)

// Server wires the HTTP API together and owns its lifecycle.
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Games      service.GameService
	Ledger     service.LedgerService
	Watcher    *livesync.Watcher
	State      *clientstate.Manager
	JWTService *JWTService
}

// New builds the router and registers all routes.
func New(addr string, environment string, deps Dependencies) *Server {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(corsMiddleware())

	authHandler := NewAuthHandler(deps.JWTService, deps.State)
	gameHandler := NewGameHandler(deps.Games, deps.State)
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	wsHandler := NewWSHandler(deps.Watcher)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/anonymous", authHandler.Anonymous)

	protected := router.Group("/api")
	protected.Use(AuthMiddleware(deps.JWTService))
	{
		protected.GET("/resume", gameHandler.Resume)

		protected.POST("/games", gameHandler.Create)
		protected.GET("/games", gameHandler.List)
		protected.GET("/games/:id", gameHandler.Get)
		protected.POST("/games/:id/join", gameHandler.Join)
		protected.POST("/games/:id/leave", gameHandler.Leave)

		protected.POST("/games/:id/transfer", ledgerHandler.Transfer)
		protected.POST("/games/:id/pay-bank", ledgerHandler.PayBank)
		protected.POST("/games/:id/take-bank", ledgerHandler.TakeBank)
		protected.POST("/games/:id/pay-pot", ledgerHandler.PayPot)
		protected.POST("/games/:id/take-pot", ledgerHandler.TakePot)
		protected.POST("/games/:id/start-bonus", ledgerHandler.StartBonus)
		protected.GET("/games/:id/transactions", ledgerHandler.Transactions)

		protected.GET("/games/:id/ws", wsHandler.Stream)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
