// Package scheduler runs the daily progress digest on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec fires every day at 21:00 UTC.
const DefaultSpec = "0 21 * * *"

type Scheduler struct {
	spec       string
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	running    bool
	reportFunc func(ctx context.Context) error
}

// New creates a scheduler for a standard five-field cron spec evaluated in
// UTC. An empty spec disables scheduling.
func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		spec:   spec,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		log.Println("⚠️ Report function not set, scheduler will not generate digests")
		return nil
	}
	if s.spec == "" {
		log.Println("⚠️ DIGEST_CRON is empty, daily digests disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() { s.Trigger() })
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	log.Printf("📅 Scheduler started, digests at %q UTC", s.spec)
	return nil
}

// Trigger runs the report function once, outside the schedule.
func (s *Scheduler) Trigger() {
	if s.reportFunc == nil {
		return
	}
	log.Println("🕘 Triggered progress digest")
	if err := s.reportFunc(s.ctx); err != nil {
		log.Printf("❌ Progress digest failed: %v", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
