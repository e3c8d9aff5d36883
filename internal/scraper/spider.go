package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/grocerscan/tesco_scraper/config"
	"github.com/grocerscan/tesco_scraper/internal/common/database"
	"github.com/grocerscan/tesco_scraper/internal/tracking"
)

// Scraper wires the frontier, API client, record sink and run tracker
// together and drives the worker pool until the frontier drains.
type Scraper struct {
	cfg      *config.ScraperConfig
	frontier RequestFrontier
	client   *APIClient
	sink     RecordSink
	tracker  *tracking.Tracker
	cleanUp  func()
	log      *log.Logger
	wg       sync.WaitGroup

	busy     atomic.Int64
	records  atomic.Int64
	failures atomic.Int64
}

func NewScraper(ctx context.Context, cfg *config.ScraperConfig) (*Scraper, error) {
	if len(cfg.Queries) == 0 {
		return nil, errors.New("no queries provided: provide at least one search keyword, URL or product ID")
	}

	mongoClient, err := database.NewMongoClient(ctx, &cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to load mongo client : %v", err)
	}

	var frontier RequestFrontier
	if cfg.Redis.Enabled {
		redisClient, err := NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to load redis client : %v", err)
		}
		frontier = NewRequestFrontier(redisClient)
	} else {
		frontier = NewMemoryFrontier()
	}

	var tracker *tracking.Tracker
	if cfg.Postgres.Enabled {
		tracker, err = tracking.NewTracker(&cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to load run tracker : %v", err)
		}
	}

	cleanup := func() {
		fmt.Println("Cleaning up frontier and sink resources")
		frontier.Close()
		mongoClient.Disconnect()
		if tracker != nil {
			tracker.Close()
		}
	}

	return &Scraper{
		cfg:      cfg,
		frontier: frontier,
		client:   NewAPIClient(cfg),
		sink:     mongoClient,
		tracker:  tracker,
		cleanUp:  cleanup,
		log:      log.New(os.Stdout, "[Scraper]: ", log.LstdFlags|log.Lshortfile),
	}, nil
}

// SeedQueries classifies every configured query and pushes its initial
// descriptor. Duplicates (two seeds resolving to the same key) are absorbed
// by the frontier.
func (s *Scraper) SeedQueries(ctx context.Context) error {
	s.log.Printf("Seeding %d queries for region: %s", len(s.cfg.Queries), s.cfg.Region)
	for i, query := range s.cfg.Queries {
		intent := ParseQuery(query)
		desc := NewSeedRequest(intent, SeedOptions{
			Region:                s.cfg.Region,
			MaxItems:              s.cfg.MaxItems,
			IncludeProductDetails: s.cfg.IncludeProductDetails,
			IncludeReviews:        s.cfg.IncludeReviews,
			QueryIndex:            i,
			TotalQueries:          len(s.cfg.Queries),
		})
		added, err := s.frontier.Push(ctx, desc)
		if err != nil {
			s.log.Printf("skipping query %q : error : %v", query, err)
			continue
		}
		if !added {
			s.log.Printf("query %q resolves to already-seen request %s, skipping", query, desc.UniqueKey)
		}
	}
	return nil
}

func (s *Scraper) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer s.cleanUp()
	defer cancel()

	var runID string
	if s.tracker != nil {
		var err error
		runID, err = s.tracker.StartRun(runCtx, s.cfg.Region, len(s.cfg.Queries))
		if err != nil {
			s.log.Printf("failed to record run start : %v", err)
		}
	}

	if err := s.SeedQueries(runCtx); err != nil {
		return err
	}

	controller := NewController(s.client, s.log)
	router := controller.Router()

	workers := make([]*Worker, s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		logger := log.New(os.Stdout, fmt.Sprintf("[%s]", workerID), log.LstdFlags|log.Lshortfile)
		workers[i] = NewWorker(workerID, s.frontier, router, s.sink, &s.busy, &s.records, &s.failures, logger)
		s.wg.Add(1)
		go workers[i].Start(runCtx, &s.wg)
	}
	s.log.Printf("Started %d workers. Scraping in progress", s.cfg.Workers)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-runCtx.Done():
		s.log.Println("Scraping cancelled")
	case <-done:
		s.log.Println("All workers finished")
	}
	for _, worker := range workers {
		worker.Stop()
	}
	s.wg.Wait()

	stats, err := s.frontier.Stats(context.Background())
	if err != nil {
		// Without real counters the run must not be recorded as finished.
		s.log.Printf("failed to read frontier stats, skipping run bookkeeping : %v", err)
		return nil
	}
	s.log.Printf("Scraping finished! totalRequests=%d handledRequests=%d pendingRequests=%d failedRequests=%d recordsEmitted=%d",
		stats.Total, stats.Handled, stats.Pending, stats.Failed, s.records.Load())

	if s.tracker != nil && runID != "" {
		if err := s.tracker.FinishRun(context.Background(), runID, tracking.RunStats{
			TotalRequests:   stats.Total,
			HandledRequests: stats.Handled,
			FailedRequests:  stats.Failed,
			RecordsEmitted:  s.records.Load(),
		}); err != nil {
			s.log.Printf("failed to record run completion : %v", err)
		}
	}

	return nil
}
