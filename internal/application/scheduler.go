package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/domain/model"
	"github.com/ericfisherdev/rankpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/rankpanel/internal/metrics"
)

// Default scheduler timings: a warm-up run shortly after process start, then
// one batch per day.
const (
	DefaultWarmupDelay  = 5 * time.Minute
	DefaultSyncInterval = 24 * time.Hour
)

// Scheduler owns the daily batch: it triggers a page-performance refresh for
// every tracked domain across all users, sequentially, isolating per-domain
// failures so one broken domain cannot halt the batch. It is an explicit
// instance constructed once at startup; run state is process-local and lost
// on restart.
type Scheduler struct {
	pagespeed   *PageSpeedService
	domainStore driven.DomainStore
	runStore    driven.SyncRunStore
	clock       Clock
	warmup      time.Duration
	interval    time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// SchedulerStatus is the display-oriented snapshot returned by Status.
// NextRun is an estimate (now + interval), not the actual fire time.
type SchedulerStatus struct {
	Running bool           `json:"running"`
	NextRun time.Time      `json:"next_run"`
	LastRun *model.SyncRun `json:"last_run,omitempty"`
}

// NewScheduler creates a Scheduler. Zero warmup/interval fall back to the
// defaults.
func NewScheduler(pagespeed *PageSpeedService, domainStore driven.DomainStore, runStore driven.SyncRunStore, clock Clock, warmup, interval time.Duration) *Scheduler {
	if warmup <= 0 {
		warmup = DefaultWarmupDelay
	}
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	return &Scheduler{
		pagespeed:   pagespeed,
		domainStore: domainStore,
		runStore:    runStore,
		clock:       clock,
		warmup:      warmup,
		interval:    interval,
	}
}

// Start schedules the warm-up run and the recurring daily batch. Calling
// Start while running is a no-op, so repeated calls never double-schedule.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Info("scheduler already running")
		return
	}

	s.running = true
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh)

	slog.Info("scheduler started", "warmup", s.warmup, "interval", s.interval)
}

// Stop cancels future scheduled fires. It does not interrupt a batch already
// in progress. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
	s.running = false

	slog.Info("scheduler stopped")
}

// Status reports whether the scheduler is running, the approximate next run,
// and the most recent recorded batch.
func (s *Scheduler) Status(ctx context.Context) SchedulerStatus {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := SchedulerStatus{
		Running: running,
		NextRun: s.clock.Now().Add(s.interval),
	}

	lastRun, err := s.runStore.Latest(ctx, model.SyncRunPageSpeed)
	if err != nil {
		slog.Error("failed to load last sync run", "error", err)
	} else {
		status.LastRun = lastRun
	}

	return status
}

// RunDailyUpdate executes one batch: every tracked domain across all users,
// sequentially, each attempt protected by its own recover so a programming
// error in one domain cannot abort the rest.
func (s *Scheduler) RunDailyUpdate(ctx context.Context) {
	start := s.clock.Now()

	runID, err := s.runStore.Begin(ctx, model.SyncRunPageSpeed)
	if err != nil {
		slog.Error("failed to record sync run start", "error", err)
	}

	var run model.SyncRun

	domains, err := s.domainStore.ListAll(ctx)
	if err != nil {
		slog.Error("daily update aborted: listing domains failed", "error", err)
		run.Error = err.Error()
		s.finishRun(ctx, runID, run, "failure")
		return
	}

	var failures int
	for _, domain := range domains {
		if err := s.updateDomain(ctx, domain); err != nil {
			slog.Error("domain daily update failed", "domain", domain.Name, "error", err)
			failures++
			continue
		}
		run.URLsAnalyzed++
	}

	slog.Info("daily update complete",
		"domains", len(domains),
		"analyzed", run.URLsAnalyzed,
		"failures", failures,
		"duration", s.clock.Now().Sub(start).Round(time.Millisecond),
	)

	s.finishRun(ctx, runID, run, "success")
}

// ManualUpdate runs the per-domain update logic outside the schedule.
func (s *Scheduler) ManualUpdate(ctx context.Context, domainID int64) error {
	domain, err := s.domainStore.GetByID(ctx, domainID)
	if err != nil {
		return err
	}
	if domain == nil {
		return fmt.Errorf("domain %d not found", domainID)
	}
	return s.updateDomain(ctx, *domain)
}

// updateDomain analyzes one domain, converting panics to errors so the batch
// loop's containment covers programming errors too.
func (s *Scheduler) updateDomain(ctx context.Context, domain model.Domain) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic during update of %s: %v", domain.Name, v)
		}
	}()

	_, err = s.pagespeed.AnalyzeAndSave(ctx, domain.ID, domain.RootURL())
	return err
}

func (s *Scheduler) finishRun(ctx context.Context, runID int64, run model.SyncRun, outcome string) {
	metrics.SyncRuns.WithLabelValues(string(model.SyncRunPageSpeed), outcome).Inc()

	if runID == 0 {
		return
	}
	if err := s.runStore.Finish(ctx, runID, run); err != nil {
		slog.Error("failed to record sync run finish", "error", err)
	}
}

// loop drives the warm-up fire and the recurring interval. The batch context
// is background on purpose: Stop only prevents future fires, it cannot
// interrupt a run in flight.
func (s *Scheduler) loop(stop <-chan struct{}) {
	select {
	case <-s.clock.After(s.warmup):
		s.runGuarded()
	case <-stop:
		return
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			s.runGuarded()
		case <-stop:
			return
		}
	}
}

// runGuarded wraps the batch in a catch-all so a programming error cannot
// kill the recurring timer goroutine.
func (s *Scheduler) runGuarded() {
	defer func() {
		if v := recover(); v != nil {
			slog.Error("daily update panicked", "panic", v)
		}
	}()

	s.RunDailyUpdate(context.Background())
}
