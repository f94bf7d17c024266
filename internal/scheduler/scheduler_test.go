package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCleaner struct {
	calls chan struct{}
	err   error
}

func (f *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	f.calls <- struct{}{}
	return 3, f.err
}

func TestStartRunsCleanupImmediately(t *testing.T) {
	cleaner := &fakeCleaner{calls: make(chan struct{}, 4)}
	s := New(cleaner, time.Hour, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	select {
	case <-cleaner.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup did not run after Start")
	}
}

func TestCleanupErrorIsSwallowed(t *testing.T) {
	cleaner := &fakeCleaner{calls: make(chan struct{}, 1), err: errors.New("database is locked")}
	s := New(cleaner, 0, nil)
	if s.interval != DefaultCleanupInterval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultCleanupInterval)
	}
	s.cleanupGuests()
	if len(cleaner.calls) != 1 {
		t.Errorf("cleanup called %d times, want 1", len(cleaner.calls))
	}
}
