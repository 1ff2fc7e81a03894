// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"esports-arena/models"
	"esports-arena/store"

	"github.com/go-co-op/gocron/v2"
)

// StartPublishScheduler runs a minutely job that publishes every draft
// tournament whose publish_at has passed.
func (s *TournamentService) StartPublishScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("❌ Failed to create publish scheduler: %v", err)
		return
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.publishDue(context.Background())
		}),
	); err != nil {
		log.Printf("❌ Failed to schedule publish job: %v", err)
		return
	}
	sched.Start()
	log.Println("⏰ Publish scheduler started (1m interval)")
}

func (s *TournamentService) publishDue(ctx context.Context) {
	tournaments, err := store.ListByPrefix[models.Tournament](ctx, s.Store, store.TournamentPrefix)
	if err != nil {
		log.Printf("[Scheduler] store error: %v", err)
		return
	}

	now := time.Now().UTC()
	for _, t := range tournaments {
		if t.Status != models.TournamentDraft || t.PublishAt == nil || t.PublishAt.After(now) {
			continue
		}
		t.Status = models.TournamentPublished
		t.PublishAt = nil
		t.UpdatedAt = now
		if err := s.Store.Set(ctx, store.TournamentKey(t.ID), &t); err != nil {
			log.Printf("[Scheduler] failed to publish tournament %s: %v", t.ID, err)
		} else {
			log.Printf("✅ Auto-published tournament: %s", t.Name)
		}
	}
}
