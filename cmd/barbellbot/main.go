package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dzikowski/barbell-bot/config"
	"github.com/dzikowski/barbell-bot/internal/app"
	httphandlers "github.com/dzikowski/barbell-bot/internal/handlers/http"
)

func main() {
	cfg := config.LoadConfig()

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Initializing app...")
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	// Set up HTTP server
	httpAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	httpServer := httphandlers.NewServer(httpAddr, application, application.PriceCache, application.Broadcaster)

	// Start HTTP server in a goroutine
	go func() {
		log.Printf("HTTP server listening on %s", httpAddr)
		if err := httpServer.Start(); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Run the first cycle immediately, then on the configured interval.
	runCycle := func() {
		if err := application.RunCycle(ctx); err != nil {
			log.Printf("Cycle failed: %v", err)
		}
	}
	runCycle()

	ticker := time.NewTicker(cfg.CycleInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ticker.C:
			runCycle()
		case <-ctx.Done():
			break loop
		}
	}

	// Clean up app resources
	log.Println("Cleaning up app resources...")
	application.Cleanup(ctx)

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server with timeout
	log.Println("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Service stopped.")
}
