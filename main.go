package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialmetrics/internal/config"
	"socialmetrics/internal/coordinator"
	"socialmetrics/internal/service"
	"socialmetrics/internal/store"
	"socialmetrics/internal/twitter"
	"socialmetrics/internal/youtube"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open the record store
	records, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer records.Close()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	// Create adapters dynamically from configuration
	var adapters []service.Adapter

	// Twitter profiles via the scraper sidecar
	for _, username := range cfg.TwitterUsernames {
		adapters = append(adapters, twitter.NewAdapter(
			username,
			twitter.NewHTTPScraper(cfg.ScraperBaseURL),
			records,
			twitter.Options{
				MaxTweets:    cfg.MaxTweets,
				CacheWindow:  cfg.TwitterCacheTTL,
				DefaultVideo: cfg.DefaultVideoURL,
			},
		))
	}

	youtubeOpts := youtube.Options{
		MaxResults:   cfg.YoutubeMaxResults,
		CacheWindow:  cfg.YoutubeCacheTTL,
		DefaultImage: cfg.DefaultImageURL,
	}

	// YouTube channels by id
	for _, channelID := range cfg.YoutubeChannelIDs {
		adapters = append(adapters, youtube.NewAdapter(
			channelID,
			cfg.YoutubeAPIKey,
			cfg.YoutubeBaseURL,
			records,
			youtubeOpts,
		))
	}

	// YouTube channels by handle, resolved against stored records first
	for _, handle := range cfg.YoutubeHandles {
		adapter, err := youtube.ResolveByHandle(ctx, handle, cfg.YoutubeAPIKey, cfg.YoutubeBaseURL, records, youtubeOpts)
		if err != nil {
			log.Printf("Skipping handle %s: %v", handle, err)
			continue
		}
		adapters = append(adapters, adapter)
	}

	// Create coordinator
	coord := coordinator.New(adapters, true)

	// Add timeout to prevent hanging indefinitely
	fetchCtx, fetchCancel := context.WithTimeout(ctx, 60*time.Second)
	defer fetchCancel()

	// Run all adapters concurrently
	fmt.Println("Fetching social metrics from configured services...")
	fmt.Println("===================================================")
	if err := coord.Run(fetchCtx); err != nil {
		log.Fatalf("Coordinator failed: %v", err)
	}

	fmt.Println("===================================================")
	fmt.Println("All fetches completed!")
}
