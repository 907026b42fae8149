package worker

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"solmentions/internal/dispatch"
	"solmentions/internal/executors"
	"solmentions/internal/ingest"
	"solmentions/internal/store"
	"solmentions/internal/workers"
)

// Service manages the pipeline's background workers: the scraper feed
// consumer, the periodic dispatch loop and the giveaway draw watcher.
type Service struct {
	dispatcher  *dispatch.Dispatcher
	stream      *ingest.StreamConsumer // nil when no feed URL is configured
	drawWatcher *workers.DrawWatcher

	dispatchInterval time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewService creates a worker service. The feed consumer is only wired when
// SCRAPER_FEED_URL is set; HTTP-push ingestion works either way.
func NewService(dispatcher *dispatch.Dispatcher, posts *store.PostStore, giveaways *store.GiveawayStore, draw *executors.DrawExecutor) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	var stream *ingest.StreamConsumer
	if feedURL := os.Getenv("SCRAPER_FEED_URL"); feedURL != "" {
		stream = ingest.NewStreamConsumer(feedURL, posts)
	}

	return &Service{
		dispatcher:       dispatcher,
		stream:           stream,
		drawWatcher:      workers.NewDrawWatcher(giveaways, draw, getEnvDuration("DRAW_CHECK_INTERVAL", 30*time.Second)),
		dispatchInterval: getEnvDuration("DISPATCH_INTERVAL", time.Minute),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Start starts all background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil // Already running
	}

	log.Println("Starting background workers...")

	if s.stream != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runStreamConsumer()
		}()
	} else {
		log.Println("SCRAPER_FEED_URL not set, feed consumer disabled")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runDispatchLoop()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runDrawWatcher()
	}()

	s.running = true
	log.Println("Background workers started successfully")

	return nil
}

// Stop stops all background workers
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return // Not running
	}

	log.Println("Stopping background workers...")

	s.cancel()
	s.wg.Wait()

	s.running = false
	log.Println("Background workers stopped")
}

// IsRunning returns whether the worker service is currently running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// runStreamConsumer runs the scraper feed consumer with restart-on-error
func (s *Service) runStreamConsumer() {
	log.Println("Starting scraper feed consumer...")

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Feed consumer stopped")
			return
		default:
			if err := s.stream.StartConsuming(s.ctx); err != nil {
				if s.ctx.Err() != nil {
					return
				}
				log.Printf("Feed consumer error: %v. Restarting in 30 seconds...", err)
				select {
				case <-time.After(30 * time.Second):
					continue
				case <-s.ctx.Done():
					return
				}
			}
		}
	}
}

// runDispatchLoop invokes the dispatcher on a fixed interval. Overlap with
// HTTP-triggered batches is safe; the store's conditional mark is what keeps
// a post from acting twice.
func (s *Service) runDispatchLoop() {
	log.Printf("Starting dispatch loop (every %v)...", s.dispatchInterval)

	ticker := time.NewTicker(s.dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Dispatch loop stopped")
			return
		case <-ticker.C:
			report, err := s.dispatcher.ProcessBatch(s.ctx)
			if err != nil {
				log.Printf("❌ Dispatch batch failed: %v", err)
				continue
			}
			if report.ProcessedCount > 0 {
				log.Printf("Dispatch batch: %d post(s) evaluated", report.ProcessedCount)
			}
		}
	}
}

// runDrawWatcher runs the giveaway draw watcher
func (s *Service) runDrawWatcher() {
	s.drawWatcher.Start(s.ctx)

	<-s.ctx.Done()

	s.drawWatcher.Stop()
	log.Println("Draw watcher stopped")
}

// getEnvDuration returns a duration environment variable or default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
