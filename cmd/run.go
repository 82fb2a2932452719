package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"boardbank/clientstate"
	"boardbank/config"
	"boardbank/database"
	"boardbank/events"
	"boardbank/livesync"
	"boardbank/repository"
	"boardbank/server"
	"boardbank/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting boardbank server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	gameService := service.NewGameService(uowFactory)
	ledgerService := service.NewLedgerService(uowFactory)
	log.Info("Services initialized")

	// Initialize client state store
	log.Info("Connecting to Redis...")
	stateStore, err := clientstate.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	stateManager := clientstate.NewManager(stateStore, gameService)
	log.Info("Client state store connected")

	// Initialize live view watcher
	watcher := livesync.NewWatcher(gameService, ledgerService, eventBus)

	// Initialize HTTP server
	jwtService := server.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	srv := server.New(":"+cfg.Port, cfg.Environment, server.Dependencies{
		Games:      gameService,
		Ledger:     ledgerService,
		Watcher:    watcher,
		State:      stateManager,
		JWTService: jwtService,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	log.WithField("environment", cfg.Environment).Info("Server is running")

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	if err := stateStore.Close(); err != nil {
		log.WithError(err).Error("Error closing Redis connection")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
