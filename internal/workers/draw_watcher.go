package workers

import (
	"context"
	"log"
	"time"

	"solmentions/internal/executors"
	"solmentions/internal/store"
)

// DrawWatcher periodically looks for giveaways whose participant target has
// been reached or whose deadline has passed, and runs the draw for each. The
// draw executor's conditional Completed flip makes overlapping checks safe.
type DrawWatcher struct {
	giveaways *store.GiveawayStore
	draw      *executors.DrawExecutor
	interval  time.Duration
	ticker    *time.Ticker
	stopChan  chan bool
}

// NewDrawWatcher creates a new draw watcher
func NewDrawWatcher(giveaways *store.GiveawayStore, draw *executors.DrawExecutor, interval time.Duration) *DrawWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &DrawWatcher{
		giveaways: giveaways,
		draw:      draw,
		interval:  interval,
		stopChan:  make(chan bool),
	}
}

// Start begins the periodic check
func (w *DrawWatcher) Start(ctx context.Context) {
	w.ticker = time.NewTicker(w.interval)

	log.Printf("🎁 Starting giveaway draw watcher (checking every %v)", w.interval)

	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Printf("🛑 Draw watcher stopping due to context cancellation")
				return
			case <-w.stopChan:
				log.Printf("🛑 Draw watcher stopping")
				return
			case <-w.ticker.C:
				w.checkDueDraws(ctx)
			}
		}
	}()
}

// Stop stops the watcher
func (w *DrawWatcher) Stop() {
	if w.ticker != nil {
		w.ticker.Stop()
	}
	close(w.stopChan)
}

// checkDueDraws runs the draw for every due giveaway, one at a time.
func (w *DrawWatcher) checkDueDraws(ctx context.Context) {
	due, err := w.giveaways.DueForDraw(time.Now())
	if err != nil {
		log.Printf("❌ Failed to query due giveaways: %v", err)
		return
	}

	for i := range due {
		g := &due[i]
		res := w.draw.Draw(ctx, g)
		switch res.Status {
		case executors.StatusSuccess:
			log.Printf("✅ Drew giveaway %s: %s", g.ID, res.Detail)
		case executors.StatusSkipped:
			log.Printf("Giveaway %s not drawn: %s", g.ID, res.Detail)
		case executors.StatusError:
			log.Printf("❌ Draw for giveaway %s failed: %s", g.ID, res.Detail)
		}
	}
}
