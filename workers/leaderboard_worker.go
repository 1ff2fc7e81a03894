// workers/leaderboard_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/store"
)

// LeaderboardWorker periodically scans all profiles and writes the ranked
// snapshot under leaderboard:global, so the leaderboard route doesn't rescan
// every profile on each request.
type LeaderboardWorker struct {
	store        store.Store
	gamification *services.GamificationService
	interval     time.Duration
}

func NewLeaderboardWorker(st store.Store, gamification *services.GamificationService, interval time.Duration) *LeaderboardWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &LeaderboardWorker{
		store:        st,
		gamification: gamification,
		interval:     interval,
	}
}

func (w *LeaderboardWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Leaderboard Snapshot Worker…")
	go w.run(ctx)
}

func (w *LeaderboardWorker) run(ctx context.Context) {
	// Initial snapshot so a fresh deploy serves rankings immediately.
	if err := w.snapshot(ctx); err != nil {
		log.Printf("⚠️ Initial leaderboard snapshot failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.snapshot(ctx); err != nil {
				log.Printf("❌ Leaderboard snapshot failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Leaderboard Snapshot Worker stopped")
			return
		}
	}
}

func (w *LeaderboardWorker) snapshot(ctx context.Context) error {
	entries, err := w.gamification.Leaderboard(ctx)
	if err != nil {
		return err
	}
	return w.store.Set(ctx, store.LeaderboardSnapshotKey, &models.LeaderboardSnapshot{
		Entries:     entries,
		GeneratedAt: time.Now().UTC(),
	})
}
