package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ltst/latest-block/config"
	"github.com/ltst/latest-block/handlers"
	"github.com/ltst/latest-block/logging"
	"go.etcd.io/bbolt"
)

func main() {
	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Print configuration
	cfg.Print()

	logger := logging.New(logging.ParseLogLevel(cfg.LogLevel), "[latest-block]")

	// Open BoltDB
	db, err := bbolt.Open(cfg.Store.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	deps, err := handlers.InitDependencies(cfg, db, logger)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	// Trigger the initial load when a channel identifier is pre-configured
	deps.Block.EnsureLoaded(context.Background())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      handlers.SetupRoutes(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", map[string]interface{}{"error": err.Error()})
	}

	// Let outstanding host writes drain before closing the database
	deps.Block.Flush()

	logger.Info("Server stopped", nil)
}
