package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/grocerscan/tesco_scraper/config"
	"github.com/grocerscan/tesco_scraper/internal/scraper"
	"github.com/grocerscan/tesco_scraper/pkg"
)

func main() {
	var (
		configFile = flag.String("config", "scraper.yaml", "Path to configuration file")
		workers    = flag.Int("workers", 0, "Number of worker goroutines (overrides config)")
		seedFile   = flag.String("seedfile", "", "Optional CSV file with extra seed queries")
		region     = flag.String("region", "", "Region code (overrides config)")
	)
	flag.Parse()

	cfg, err := config.LoadScraperConfig(*configFile)
	if err != nil {
		log.Printf("Failed to load configuration from %s: %v", *configFile, err)
		log.Println("Using default configuration...")
		cfg = config.GetDefaultConfig()
	}

	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *region != "" {
		cfg.Region = *region
	}
	if *seedFile != "" {
		queries, err := pkg.LoadSeedQueries(*seedFile)
		if err != nil {
			log.Fatalf("Failed to load seed queries: %v", err)
		}
		cfg.Queries = append(cfg.Queries, queries...)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	s, err := scraper.NewScraper(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize the scraper: %v", err)
	}
	if err := s.Run(ctx); err != nil {
		log.Fatalf("Scraper exited with error: %v", err)
	}
}
