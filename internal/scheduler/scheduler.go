package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

// DefaultCleanupInterval is how often expired guest accounts are purged.
const DefaultCleanupInterval = time.Hour

// GuestCleaner deletes guest accounts whose lifetime has ended.
type GuestCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	guests    GuestCleaner
	interval  time.Duration
	timeout   time.Duration
	log       *logger.Logger
}

// New creates a new scheduler instance. A zero interval uses
// DefaultCleanupInterval.
func New(guests GuestCleaner, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		guests:    guests,
		interval:  interval,
		timeout:   5 * time.Minute,
		log:       log,
	}
}

// Start registers the jobs and runs them in the background. Jobs run once
// immediately, then on every interval.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.cleanupGuests); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "jobs", len(s.scheduler.Jobs()), "interval", s.interval.String())
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) cleanupGuests() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	deleted, err := s.guests.CleanupExpired(ctx)
	if err != nil {
		s.log.Error("guest cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.log.Info("expired guests removed", "count", deleted)
	}
}
