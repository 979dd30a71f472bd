package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/di"
	"github.com/fruno/warranty-bot/internal/extraction"
	"github.com/fruno/warranty-bot/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	inbox ports.Inbox,
	engine extraction.RecognitionEngine,
	journal core.Journal,
) error {
	defer logger.Sync()

	// Start the inbox watcher
	if err := inbox.Start(); err != nil {
		logger.Fatal("Failed to start inbox watcher", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the inbox watcher
	if err := inbox.Stop(); err != nil {
		logger.Error("Failed to stop inbox watcher", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := engine.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close recognition engine", zap.Error(err))
		}
	}

	// Stop the journal if needed
	if stopper, ok := journal.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
