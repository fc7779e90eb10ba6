package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/polymarket-feed/internal/aggregate"
	"github.com/polymarket-feed/internal/api"
	"github.com/polymarket-feed/internal/config"
	"github.com/polymarket-feed/internal/gamma"
	"github.com/polymarket-feed/internal/watchparty"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Polymarket category feed")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded")

	gammaClient := gamma.NewClient(cfg.Gamma)
	log.Println("Gamma client initialized")

	aggregationService := aggregate.NewService(gammaClient, cfg.Aggregation)
	log.Println("Aggregation service initialized")

	var hub *watchparty.Hub
	if cfg.WatchParty.Enabled {
		hub = watchparty.NewHub()
		log.Println("Watch party hub initialized")
	}

	apiServer := api.NewServer(cfg.API, aggregationService, hub)
	log.Println("API server initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := apiServer.Run(ctx); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	log.Println("All components started. System running...")

	<-sigChan
	log.Println("Shutting down...")

	cancel()
	wg.Wait()
	log.Println("Shutdown complete")
}
