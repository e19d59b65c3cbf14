package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler triggers scheduled repository syncs on a fixed tick.
// A tick that is still running when the next one fires is skipped.
type Scheduler struct {
	config   domain.SchedulerConfig
	syncOrch driving.SyncOrchestrator
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config domain.SchedulerConfig, syncOrch driving.SyncOrchestrator) *Scheduler {
	if config.TickInterval <= 0 {
		config.TickInterval = domain.DefaultSchedulerConfig().TickInterval
	}
	return &Scheduler{
		config:   config,
		syncOrch: syncOrch,
		now:      time.Now,
	}
}

// Start runs one tick immediately, then one per interval. It blocks until
// ctx is cancelled or Stop is called, and returns once the running tick
// has finished.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logger.Info("Scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	cl := cronLogger{}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(cron.Every(s.config.TickInterval), cron.FuncJob(func() { s.tick(ctx) }))

	logger.Info("Scheduler started, checking repositories every %s", s.config.TickInterval)
	s.tick(ctx)
	c.Start()

	select {
	case <-ctx.Done():
	case <-stopCh:
	}

	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
	return nil
}

// Stop ends the scheduler and waits for the running tick to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running || s.stopCh == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.stopCh)
	s.stopCh = nil
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.syncOrch.SyncDue(ctx, s.now()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Scheduled sync: %v", err)
	}
}

// cronLogger routes cron's own messages to the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	l := logger.L()
	e := l.Debug()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			e = e.Interface(k, keysAndValues[i+1])
		}
	}
	e.Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l := logger.L()
	e := l.Error().Err(err)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			e = e.Interface(k, keysAndValues[i+1])
		}
	}
	e.Msg(msg)
}
